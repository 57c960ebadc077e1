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
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravitational/trace"

	"github.com/rapidscada/agent/lib/layout"
)

// packConfig creates a ZIP archive at destFile containing the working set
// of RelPaths implied by options.Parts, honoring options.Ignore. Atomicity
// is not required: destFile is overwritten and a partial archive on
// failure is acceptable as long as the error is surfaced (spec §4.4).
func packConfig(instanceRoot, destFile string, options ConfigOptions) error {
	ignoreDict, err := expandIgnore(instanceRoot, options.Ignore)
	if err != nil {
		return trace.Wrap(err)
	}

	out, err := os.Create(destFile)
	if err != nil {
		return trace.Wrap(err, "creating archive")
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	for _, rel := range workingSet(options.Parts) {
		ignored := ignoreDict.Get(rel.Part, rel.Folder)
		root := filepath.Join(instanceRoot, rel.Dir())
		entryPrefix := filepath.ToSlash(rel.Dir())

		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root {
				return nil
			}
			if d.IsDir() {
				if ignored.Dirs[path] {
					return filepath.SkipDir
				}
				return nil
			}
			if ignored.Files[path] {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".bak") {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			name := entryPrefix + filepath.ToSlash(rel)
			return writeZipEntry(zw, path, name)
		})
		if err != nil {
			return trace.Wrap(err, "packing %s", root)
		}
	}

	return nil
}

func writeZipEntry(zw *zip.Writer, srcPath, name string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	header := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}
	header.SetMode(0o644)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// unpackConfig first sweeps the target working set, deleting every file
// and empty subdirectory not marked ignored, then extracts every archive
// entry whose name falls under one of the selected parts' prefixes. This
// makes unpack selective and idempotent with respect to parts (spec
// §4.4).
func unpackConfig(instanceRoot, srcFile string, options ConfigOptions) error {
	ignoreDict, err := expandIgnore(instanceRoot, options.Ignore)
	if err != nil {
		return trace.Wrap(err)
	}

	rels := workingSet(options.Parts)
	for _, rel := range rels {
		root := filepath.Join(instanceRoot, rel.Dir())
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		ignored := ignoreDict.Get(rel.Part, rel.Folder)
		if _, err := sweepDir(root, ignored.Dirs, ignored.Files); err != nil {
			return trace.Wrap(err, "sweeping %s", root)
		}
	}

	prefixes := make([]string, 0, len(rels))
	for _, rel := range rels {
		prefixes = append(prefixes, filepath.ToSlash(rel.Dir()))
	}

	zr, err := zip.OpenReader(srcFile)
	if err != nil {
		return trace.Wrap(err, "opening archive")
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !hasAnyPrefix(f.Name, prefixes) {
			continue
		}
		if err := extractZipEntry(instanceRoot, f); err != nil {
			return trace.Wrap(err, "extracting %s", f.Name)
		}
	}
	return nil
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func extractZipEntry(instanceRoot string, f *zip.File) error {
	dest := filepath.Join(instanceRoot, filepath.FromSlash(f.Name))

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// sweepDir deletes files and empty subdirectories under dirAbs that are
// not in the ignore sets, working bottom-up. It reports whether dirAbs
// itself ends up with no remaining entries; the caller is responsible for
// removing dirAbs (the top-level working root is never removed by this
// function's own caller).
func sweepDir(dirAbs string, ignoredDirs, ignoredFiles map[string]bool) (empty bool, err error) {
	entries, err := os.ReadDir(dirAbs)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}

	nonEmpty := false
	for _, entry := range entries {
		abs := filepath.Join(dirAbs, entry.Name())

		if entry.IsDir() {
			if ignoredDirs[abs] {
				nonEmpty = true
				continue
			}
			childEmpty, err := sweepDir(abs, ignoredDirs, ignoredFiles)
			if err != nil {
				return false, err
			}
			if childEmpty {
				if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
					return false, err
				}
			} else {
				nonEmpty = true
			}
			continue
		}

		if ignoredFiles[abs] {
			nonEmpty = true
			continue
		}
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return false, err
		}
	}

	return !nonEmpty, nil
}

// availableParts returns the union of ConfigParts whose root directory
// exists under instanceRoot.
func availableParts(instanceRoot string) layout.ConfigPart {
	var out layout.ConfigPart
	for _, part := range []layout.ConfigPart{
		layout.PartBase, layout.PartInterface, layout.PartServer, layout.PartComm, layout.PartWeb,
	} {
		root := filepath.Join(instanceRoot, layout.Path(part, layout.FolderRoot))
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			out |= part
		}
	}
	return out
}
