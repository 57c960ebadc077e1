// Copyright 2026 Rapid SCADA Agent contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package instance

import "github.com/rapidscada/agent/lib/layout"

// ConfigOptions selects which ConfigParts a pack/unpack operation
// targets, plus a list of RelPath entries to leave untouched. Ignore
// entries outside the selected parts are silently inert (spec §3).
type ConfigOptions struct {
	Parts  layout.ConfigPart
	Ignore []layout.RelPath
}

// workingSet returns the RelPaths that PackConfig/UnpackConfig operate
// over for the selected parts, per spec §4.4: Base and Interface pack
// their root; Server and Comm pack their Config folder; Web packs both
// Config and Storage.
func workingSet(parts layout.ConfigPart) []layout.RelPath {
	var out []layout.RelPath
	for _, part := range parts.Parts() {
		switch part {
		case layout.PartBase, layout.PartInterface:
			out = append(out, layout.RelPath{Part: part, Folder: layout.FolderRoot})
		case layout.PartServer, layout.PartComm:
			out = append(out, layout.RelPath{Part: part, Folder: layout.FolderConfig})
		case layout.PartWeb:
			out = append(out,
				layout.RelPath{Part: part, Folder: layout.FolderConfig},
				layout.RelPath{Part: part, Folder: layout.FolderStorage},
			)
		}
	}
	return out
}
