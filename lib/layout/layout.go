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

// Package layout provides the canonical mapping from (ConfigPart,
// AppFolder) pairs to directories under an instance root, and the RelPath
// type used to address files and masks within those directories.
package layout

import (
	"path/filepath"
	"strings"

	"github.com/gravitational/trace"
)

// ConfigPart is a bitmask of the top-level configuration slices an
// instance exposes.
type ConfigPart uint8

const (
	PartNone      ConfigPart = 0
	PartBase      ConfigPart = 1 << 0
	PartInterface ConfigPart = 1 << 1
	PartServer    ConfigPart = 1 << 2
	PartComm      ConfigPart = 1 << 3
	PartWeb       ConfigPart = 1 << 4
)

// PartAll is the union of every named part.
const PartAll = PartBase | PartInterface | PartServer | PartComm | PartWeb

// allParts lists the individual flags in a stable iteration order, used
// wherever callers need to range over a ConfigPart set.
var allParts = []ConfigPart{PartBase, PartInterface, PartServer, PartComm, PartWeb}

// Has reports whether part is included in the receiver set.
func (c ConfigPart) Has(part ConfigPart) bool {
	return c&part == part
}

// Parts returns the individual flags set in c, in canonical order.
func (c ConfigPart) Parts() []ConfigPart {
	var out []ConfigPart
	for _, p := range allParts {
		if c.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// String renders a human-readable name, used in logs and CLI output.
func (c ConfigPart) String() string {
	if c == PartNone {
		return "None"
	}
	if c == PartAll {
		return "All"
	}
	names := map[ConfigPart]string{
		PartBase:      "Base",
		PartInterface: "Interface",
		PartServer:    "Server",
		PartComm:      "Comm",
		PartWeb:       "Web",
	}
	var parts []string
	for _, p := range c.Parts() {
		parts = append(parts, names[p])
	}
	return strings.Join(parts, "|")
}

// AppFolder is a conventional subdirectory beneath a ConfigPart's root.
type AppFolder int

const (
	FolderRoot AppFolder = iota
	FolderConfig
	FolderLog
	FolderStorage
	FolderCmd
)

// Path returns the instance-relative directory for the given
// (ConfigPart, AppFolder) pair, using the host's path separator and
// terminated by a trailing separator. Pairs with no defined directory
// (e.g. Interface+Log) fall back to the part's root.
func Path(part ConfigPart, folder AppFolder) string {
	sep := string(filepath.Separator)
	join := func(elems ...string) string {
		return filepath.Join(elems...) + sep
	}

	switch part {
	case PartBase:
		if folder == FolderRoot {
			return join("BaseDAT")
		}
	case PartInterface:
		if folder == FolderRoot {
			return join("Interface")
		}
	case PartServer:
		switch folder {
		case FolderRoot:
			return join("ScadaServer")
		case FolderConfig:
			return join("ScadaServer", "Config")
		case FolderLog:
			return join("ScadaServer", "Log")
		case FolderCmd:
			return join("ScadaServer", "Cmd")
		case FolderStorage:
			return join("ScadaServer", "Storage")
		}
	case PartComm:
		switch folder {
		case FolderRoot:
			return join("ScadaComm")
		case FolderConfig:
			return join("ScadaComm", "Config")
		case FolderLog:
			return join("ScadaComm", "Log")
		case FolderCmd:
			return join("ScadaComm", "Cmd")
		case FolderStorage:
			return join("ScadaComm", "Storage")
		}
	case PartWeb:
		switch folder {
		case FolderRoot:
			return join("ScadaWeb")
		case FolderConfig:
			return join("ScadaWeb", "config")
		case FolderLog:
			return join("ScadaWeb", "log")
		case FolderStorage:
			return join("ScadaWeb", "storage")
		}
	}

	// Unmapped pair: fall back to the part's root directory.
	return Path(part, FolderRoot)
}

// RelPath identifies a file, directory, or glob mask relative to an
// instance root: (ConfigPart, AppFolder) selects the base directory, Tail
// is either empty (a directory reference) or a file/glob name.
type RelPath struct {
	Part   ConfigPart
	Folder AppFolder
	Tail   string
}

// IsMask reports whether Tail contains glob wildcard characters.
func (r RelPath) IsMask() bool {
	return strings.ContainsAny(r.Tail, "*?[")
}

// Dir returns the instance-relative directory of r, ignoring Tail.
func (r RelPath) Dir() string {
	return Path(r.Part, r.Folder)
}

// Validate rejects tails that are absolute or that attempt to escape the
// instance root via "..".
func (r RelPath) Validate() error {
	if r.Tail == "" {
		return nil
	}
	if filepath.IsAbs(r.Tail) {
		return trace.BadParameter("rel path tail %q must not be absolute", r.Tail)
	}
	clean := filepath.ToSlash(filepath.Clean(r.Tail))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return trace.BadParameter("rel path tail %q escapes the instance root", r.Tail)
	}
	return nil
}

// AbsPath composes an absolute path from an instance root and r. It
// re-validates r so callers cannot bypass Validate by constructing RelPath
// literals directly.
func AbsPath(instanceRoot string, r RelPath) (string, error) {
	if err := r.Validate(); err != nil {
		return "", trace.Wrap(err)
	}
	dir := filepath.Join(instanceRoot, Path(r.Part, r.Folder))
	if r.Tail == "" {
		return dir, nil
	}
	return filepath.Join(dir, r.Tail), nil
}
