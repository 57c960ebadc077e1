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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rapidscada/agent/lib/layout"
)

func mustWriteFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func buildSampleTree(t *testing.T) string {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "BaseDAT", "user.dat"), "users")
	mustWriteFile(t, filepath.Join(root, "BaseDAT", "cnlList.xml"), "channels")
	mustWriteFile(t, filepath.Join(root, "Interface", "scheme.sch"), "scheme")
	mustWriteFile(t, filepath.Join(root, "ScadaServer", "Config", "config.xml"), "server config")
	mustWriteFile(t, filepath.Join(root, "ScadaServer", "Config", "config.xml.bak"), "stale backup")
	mustWriteFile(t, filepath.Join(root, "ScadaServer", "Log", "ScadaServerSvc.txt"), "State : Normal")
	return root
}

func TestPackConfigSelectivePartsAndIgnore(t *testing.T) {
	root := buildSampleTree(t)
	dest := filepath.Join(t.TempDir(), "out.zip")

	opts := ConfigOptions{Parts: layout.PartBase | layout.PartServer}
	require.NoError(t, packConfig(root, dest, opts))

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	require.Contains(t, names, "BaseDAT/user.dat")
	require.Contains(t, names, "BaseDAT/cnlList.xml")
	require.Contains(t, names, "ScadaServer/Config/config.xml")
	require.NotContains(t, names, "ScadaServer/Config/config.xml.bak")
	for _, n := range names {
		require.NotContains(t, n, "Interface/")
		require.NotContains(t, n, "ScadaServer/Log/")
	}
}

func TestPackConfigHonorsExplicitIgnore(t *testing.T) {
	root := buildSampleTree(t)
	dest := filepath.Join(t.TempDir(), "out.zip")

	opts := ConfigOptions{
		Parts: layout.PartBase,
		Ignore: []layout.RelPath{
			{Part: layout.PartBase, Folder: layout.FolderRoot, Tail: "cnlList.xml"},
		},
	}
	require.NoError(t, packConfig(root, dest, opts))

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	require.Contains(t, names, "BaseDAT/user.dat")
	require.NotContains(t, names, "BaseDAT/cnlList.xml")
}

func TestUnpackConfigRoundTrip(t *testing.T) {
	src := buildSampleTree(t)
	archivePath := filepath.Join(t.TempDir(), "out.zip")

	opts := ConfigOptions{Parts: layout.PartBase | layout.PartServer}
	require.NoError(t, packConfig(src, archivePath, opts))

	dest := t.TempDir()
	// Pre-seed dest with a stray file that should be swept away.
	mustWriteFile(t, filepath.Join(dest, "BaseDAT", "stray.txt"), "should be deleted")

	require.NoError(t, unpackConfig(dest, archivePath, opts))

	require.FileExists(t, filepath.Join(dest, "BaseDAT", "user.dat"))
	require.FileExists(t, filepath.Join(dest, "ScadaServer", "Config", "config.xml"))
	require.NoFileExists(t, filepath.Join(dest, "BaseDAT", "stray.txt"))
	require.NoFileExists(t, filepath.Join(dest, "Interface", "scheme.sch"))
}

func TestUnpackConfigPreservesIgnoredFiles(t *testing.T) {
	src := buildSampleTree(t)
	archivePath := filepath.Join(t.TempDir(), "out.zip")
	packOpts := ConfigOptions{Parts: layout.PartBase}
	require.NoError(t, packConfig(src, archivePath, packOpts))

	dest := t.TempDir()
	keepPath := filepath.Join(dest, "BaseDAT", "local-only.txt")
	mustWriteFile(t, keepPath, "keep me")

	unpackOpts := ConfigOptions{
		Parts: layout.PartBase,
		Ignore: []layout.RelPath{
			{Part: layout.PartBase, Folder: layout.FolderRoot, Tail: "local-only.txt"},
		},
	}
	require.NoError(t, unpackConfig(dest, archivePath, unpackOpts))

	require.FileExists(t, keepPath)
	require.FileExists(t, filepath.Join(dest, "BaseDAT", "user.dat"))
}

func TestSweepDirPreservesIgnoredSubdirEntirely(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "keep", "inner.txt"), "x")
	mustWriteFile(t, filepath.Join(root, "drop.txt"), "y")

	ignoredDirs := map[string]bool{filepath.Join(root, "keep"): true}
	empty, err := sweepDir(root, ignoredDirs, map[string]bool{})
	require.NoError(t, err)
	require.False(t, empty)

	require.FileExists(t, filepath.Join(root, "keep", "inner.txt"))
	require.NoFileExists(t, filepath.Join(root, "drop.txt"))
}

func TestAvailableParts(t *testing.T) {
	root := buildSampleTree(t)
	parts := availableParts(root)
	require.True(t, parts.Has(layout.PartBase))
	require.True(t, parts.Has(layout.PartInterface))
	require.True(t, parts.Has(layout.PartServer))
	require.False(t, parts.Has(layout.PartComm))
	require.False(t, parts.Has(layout.PartWeb))
}
