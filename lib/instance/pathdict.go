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

import (
	"path/filepath"

	"github.com/rapidscada/agent/lib/layout"
)

// PathList holds two sets of absolute paths, directories and files, for
// O(1) ignore-membership tests during pack/unpack.
type PathList struct {
	Dirs  map[string]bool
	Files map[string]bool
}

func newPathList() *PathList {
	return &PathList{Dirs: make(map[string]bool), Files: make(map[string]bool)}
}

// PathDict is indexed by (ConfigPart, AppFolder) and lazily creates
// PathLists on first access.
type PathDict struct {
	lists map[pathDictKey]*PathList
}

type pathDictKey struct {
	part   layout.ConfigPart
	folder layout.AppFolder
}

// NewPathDict returns an empty dictionary.
func NewPathDict() *PathDict {
	return &PathDict{lists: make(map[pathDictKey]*PathList)}
}

// Get returns the PathList for (part, folder), creating it if absent.
func (d *PathDict) Get(part layout.ConfigPart, folder layout.AppFolder) *PathList {
	key := pathDictKey{part, folder}
	list, ok := d.lists[key]
	if !ok {
		list = newPathList()
		d.lists[key] = list
	}
	return list
}

// expandIgnore resolves options' ignore RelPaths (including masks) against
// the filesystem rooted at instanceRoot, filling in a PathDict of absolute
// directory and file paths. Masks are expanded at call time, not at parse
// time, so a file created between successive calls is picked up on the
// next expansion (spec §9).
func expandIgnore(instanceRoot string, ignore []layout.RelPath) (*PathDict, error) {
	dict := NewPathDict()
	for _, rel := range ignore {
		list := dict.Get(rel.Part, rel.Folder)

		if rel.Tail == "" {
			abs, err := layout.AbsPath(instanceRoot, rel)
			if err != nil {
				return nil, err
			}
			list.Dirs[abs] = true
			continue
		}

		if !rel.IsMask() {
			abs, err := layout.AbsPath(instanceRoot, rel)
			if err != nil {
				return nil, err
			}
			list.Files[abs] = true
			continue
		}

		dir := filepath.Join(instanceRoot, rel.Dir())
		matches, err := filepath.Glob(filepath.Join(dir, rel.Tail))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			list.Files[m] = true
		}
	}
	return dict, nil
}
