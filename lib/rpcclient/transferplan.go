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

package rpcclient

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"

	"github.com/rapidscada/agent/lib/instance"
	"github.com/rapidscada/agent/lib/layout"
)

// TransferPlan describes one administrator-initiated download or upload
// (spec §3). Path names either a directory (selective transfer, extracted
// or packed locally) or a single archive file (streamed verbatim).
type TransferPlan struct {
	Parts               layout.ConfigPart
	Path                string
	IsArchive           bool
	IncludeSiteSpecific bool
	ClearBeforeWrite    bool
	ReimportBase        bool
}

// siteSpecificIgnore is the set of RelPaths excluded from a transfer
// unless IncludeSiteSpecific is set: per-site registration data that
// should not be copied wholesale between installations.
func siteSpecificIgnore(parts layout.ConfigPart) []layout.RelPath {
	var ignore []layout.RelPath
	if parts.Has(layout.PartBase) {
		ignore = append(ignore, layout.RelPath{Part: layout.PartBase, Folder: layout.FolderRoot, Tail: "instance.reg"})
	}
	if parts.Has(layout.PartWeb) {
		ignore = append(ignore, layout.RelPath{Part: layout.PartWeb, Folder: layout.FolderStorage})
	}
	return ignore
}

// deriveIgnore builds the ignore list for options sent to the agent:
// site-specific entries unless the plan opts in to carrying them over.
func deriveIgnore(plan TransferPlan) []layout.RelPath {
	if plan.IncludeSiteSpecific {
		return nil
	}
	return siteSpecificIgnore(plan.Parts)
}

// convertBaseToDat implements the client-only pre-upload step of spec
// §4.8: when the upload source is a working base directory, a
// human-editable "user.csv" (Name,Password,RoleID per row) is compiled
// into the binary user.dat the agent understands. Absent that file, this
// is a no-op: most uploads already carry a ready-made user.dat.
func convertBaseToDat(sourceDir string) error {
	csvPath := filepath.Join(sourceDir, layout.Path(layout.PartBase, layout.FolderRoot), "user.csv")
	f, err := os.Open(csvPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return trace.Wrap(err, "reading user.csv")
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return trace.Wrap(err, "parsing user.csv")
	}

	records := make([]instance.UserRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) != 3 {
			return trace.BadParameter("user.csv: expected 3 columns, got %d", len(row))
		}
		roleID, err := parseRoleID(row[2])
		if err != nil {
			return trace.Wrap(err, "user.csv")
		}
		records = append(records, instance.UserRecord{Name: row[0], Password: row[1], RoleID: roleID})
	}

	datPath := filepath.Join(sourceDir, layout.Path(layout.PartBase, layout.FolderRoot), "user.dat")
	if err := os.WriteFile(datPath, instance.EncodeUserDat(records), 0o600); err != nil {
		return trace.Wrap(err, "writing user.dat")
	}
	return nil
}

func parseRoleID(s string) (int, error) {
	var n int
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, trace.BadParameter("invalid role id %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
