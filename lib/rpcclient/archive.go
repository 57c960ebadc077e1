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
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravitational/trace"

	"github.com/rapidscada/agent/lib/layout"
)

// workingSet mirrors lib/instance's part-to-RelPath expansion (spec
// §4.4): Base and Interface pack their root; Server and Comm pack their
// Config folder; Web packs both Config and Storage. Duplicated here,
// rather than exported from lib/instance, because the administrator side
// operates on a plain local directory, not an Instance.
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

// ignoredPaths expands the RelPath ignore list against root, returning
// absolute directory and file paths to skip. Masked tails are globbed at
// expansion time, same as the agent-side PathDict (spec §9 design note).
func ignoredPaths(root string, ignore []layout.RelPath) (dirs, files map[string]bool, err error) {
	dirs = map[string]bool{}
	files = map[string]bool{}
	for _, rel := range ignore {
		if err := rel.Validate(); err != nil {
			return nil, nil, trace.Wrap(err)
		}
		base := filepath.Join(root, rel.Dir())
		if rel.Tail == "" {
			dirs[base] = true
			continue
		}
		if rel.IsMask() {
			matches, err := filepath.Glob(filepath.Join(base, rel.Tail))
			if err != nil {
				return nil, nil, trace.Wrap(err)
			}
			for _, m := range matches {
				files[m] = true
			}
			continue
		}
		files[filepath.Join(base, rel.Tail)] = true
	}
	return dirs, files, nil
}

// packLocalConfig zips the selected parts of root into destZip, skipping
// ignored entries and any ".bak" file, matching the agent-side
// PackConfig semantics (spec §4.4) for a plain local directory.
func packLocalConfig(root, destZip string, parts layout.ConfigPart, ignore []layout.RelPath) error {
	ignoredDirs, ignoredFiles, err := ignoredPaths(root, ignore)
	if err != nil {
		return trace.Wrap(err)
	}

	out, err := os.Create(destZip)
	if err != nil {
		return trace.Wrap(err, "creating archive")
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	for _, rel := range workingSet(parts) {
		dirRoot := filepath.Join(root, rel.Dir())
		prefix := filepath.ToSlash(rel.Dir())

		if _, err := os.Stat(dirRoot); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(dirRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == dirRoot {
				return nil
			}
			if d.IsDir() {
				if ignoredDirs[path] {
					return filepath.SkipDir
				}
				return nil
			}
			if ignoredFiles[path] || strings.EqualFold(filepath.Ext(path), ".bak") {
				return nil
			}

			relPath, err := filepath.Rel(dirRoot, path)
			if err != nil {
				return err
			}
			return writeZipEntry(zw, path, prefix+filepath.ToSlash(relPath))
		})
		if err != nil {
			return trace.Wrap(err, "packing %s", dirRoot)
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

	header := &zip.FileHeader{Name: name, Method: zip.Deflate}
	header.SetMode(0o644)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// unpackLocalZip extracts srcZip's entries for the selected parts into
// root, optionally clearing the working set first (TransferPlan's
// ClearBeforeWrite). Entries outside the selected parts' prefixes are
// skipped, matching the agent-side UnpackConfig semantics (spec §4.4).
func unpackLocalZip(root, srcZip string, parts layout.ConfigPart, ignore []layout.RelPath, clearFirst bool) error {
	ignoredDirs, ignoredFiles, err := ignoredPaths(root, ignore)
	if err != nil {
		return trace.Wrap(err)
	}

	rels := workingSet(parts)
	if clearFirst {
		for _, rel := range rels {
			dirRoot := filepath.Join(root, rel.Dir())
			if _, err := os.Stat(dirRoot); os.IsNotExist(err) {
				continue
			}
			if _, err := sweepDir(dirRoot, ignoredDirs, ignoredFiles); err != nil {
				return trace.Wrap(err, "clearing %s", dirRoot)
			}
		}
	}

	prefixes := make([]string, 0, len(rels))
	for _, rel := range rels {
		prefixes = append(prefixes, filepath.ToSlash(rel.Dir()))
	}

	zr, err := zip.OpenReader(srcZip)
	if err != nil {
		return trace.Wrap(err, "opening archive")
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !hasAnyPrefix(f.Name, prefixes) {
			continue
		}
		if err := extractZipEntry(root, f); err != nil {
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

func extractZipEntry(root string, f *zip.File) error {
	dest := filepath.Join(root, filepath.FromSlash(f.Name))

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

// sweepDir deletes files and empty subdirectories under dirAbs not in the
// ignore sets, working bottom-up, leaving ignored entries untouched.
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
