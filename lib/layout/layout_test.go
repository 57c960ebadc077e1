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

package layout

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	cases := []struct {
		part   ConfigPart
		folder AppFolder
		want   string
	}{
		{PartBase, FolderRoot, "BaseDAT"},
		{PartInterface, FolderRoot, "Interface"},
		{PartServer, FolderConfig, filepath.Join("ScadaServer", "Config")},
		{PartServer, FolderLog, filepath.Join("ScadaServer", "Log")},
		{PartComm, FolderConfig, filepath.Join("ScadaComm", "Config")},
		{PartWeb, FolderConfig, filepath.Join("ScadaWeb", "config")},
		{PartWeb, FolderStorage, filepath.Join("ScadaWeb", "storage")},
		{PartServer, FolderCmd, filepath.Join("ScadaServer", "Cmd")},
	}
	for _, c := range cases {
		got := Path(c.part, c.folder)
		require.Equal(t, c.want+string(filepath.Separator), got)
	}
}

func TestConfigPartUnion(t *testing.T) {
	set := PartBase | PartServer
	require.True(t, set.Has(PartBase))
	require.True(t, set.Has(PartServer))
	require.False(t, set.Has(PartComm))
	require.ElementsMatch(t, []ConfigPart{PartBase, PartServer}, set.Parts())
	require.Equal(t, "All", PartAll.String())
	require.Equal(t, "None", PartNone.String())
}

func TestRelPathIsMask(t *testing.T) {
	require.True(t, RelPath{Tail: "*.bak"}.IsMask())
	require.False(t, RelPath{Tail: "user.dat"}.IsMask())
	require.False(t, RelPath{Tail: ""}.IsMask())
}

func TestRelPathValidateRejectsEscape(t *testing.T) {
	bad := []RelPath{
		{Tail: "/etc/passwd"},
		{Tail: "../secrets"},
		{Part: PartServer, Folder: FolderConfig, Tail: "../../outside"},
	}
	for _, r := range bad {
		require.Error(t, r.Validate(), "expected rejection for tail %q", r.Tail)
	}

	ok := []RelPath{
		{Tail: ""},
		{Tail: "user.dat"},
		{Part: PartServer, Folder: FolderConfig, Tail: "sub/file.xml"},
	}
	for _, r := range ok {
		require.NoError(t, r.Validate())
	}
}

func TestAbsPathRejectsEscape(t *testing.T) {
	_, err := AbsPath("/srv/instances/site1", RelPath{Tail: "../../etc/passwd"})
	require.Error(t, err)

	abs, err := AbsPath("/srv/instances/site1", RelPath{Part: PartServer, Folder: FolderConfig, Tail: "devices.xml"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/srv/instances/site1", "ScadaServer", "Config", "devices.xml"), abs)
}
