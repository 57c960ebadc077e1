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
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rapidscada/agent/lib/authn"
	"github.com/rapidscada/agent/lib/layout"
)

func newTestInstance(t *testing.T) (*Instance, string) {
	root := t.TempDir()
	userDat := filepath.Join(root, "BaseDAT", "user.dat")
	require.NoError(t, os.MkdirAll(filepath.Dir(userDat), 0o755))
	data := EncodeUserDat([]UserRecord{
		{Name: "op", Password: "pw", RoleID: applicationRoleID},
		{Name: "viewer", Password: "pw2", RoleID: 1},
	})
	require.NoError(t, os.WriteFile(userDat, data, 0o644))

	inst := New("site1", root, &sync.Mutex{}, authn.DenyAll{})
	return inst, root
}

func TestValidateUserSuccess(t *testing.T) {
	inst, _ := newTestInstance(t)
	ok, errMsg := inst.ValidateUser("OP", "pw") // case-insensitive name lookup
	require.True(t, ok)
	require.Empty(t, errMsg)
}

func TestValidateUserWrongRoleFails(t *testing.T) {
	inst, _ := newTestInstance(t)
	ok, _ := inst.ValidateUser("viewer", "pw2")
	require.False(t, ok)
}

func TestValidateUserLockout(t *testing.T) {
	inst, _ := newTestInstance(t)

	for i := 0; i < 3; i++ {
		ok, msg := inst.ValidateUser("op", "wrong")
		require.False(t, ok)
		require.Equal(t, "invalid username or password", msg)
	}

	// Fourth attempt, even with the right password, fails fast.
	ok, msg := inst.ValidateUser("op", "pw")
	require.False(t, ok)
	require.Equal(t, "number of login attempts exceeded", msg)

	// A successful validation resets the counter (once unblocked by a
	// fresh Instance representing an operator fixing the password).
	inst2, _ := newTestInstance(t)
	for i := 0; i < 2; i++ {
		inst2.ValidateUser("op", "wrong")
	}
	ok, _ = inst2.ValidateUser("op", "pw")
	require.True(t, ok)
	ok, _ = inst2.ValidateUser("op", "wrong")
	require.False(t, ok)
	ok, _ = inst2.ValidateUser("op", "wrong")
	require.False(t, ok)
	ok, msg = inst2.ValidateUser("op", "wrong")
	require.False(t, ok)
	require.NotEqual(t, "number of login attempts exceeded", msg, "counter should have reset after the earlier success")
}

func TestGetServiceStatusParsesStateLine(t *testing.T) {
	inst, root := newTestInstance(t)
	logDir := filepath.Join(root, "ScadaServer", "Log")
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "ScadaServerSvc.txt"), []byte("State : Normal\n"), 0o644))

	ok, status := inst.GetServiceStatus(ServiceServer)
	require.True(t, ok)
	require.Equal(t, StatusNormal, status)
}

func TestGetServiceStatusMissingFileIsUndefinedNotError(t *testing.T) {
	inst, _ := newTestInstance(t)
	ok, status := inst.GetServiceStatus(ServiceComm)
	require.True(t, ok)
	require.Equal(t, StatusUndefined, status)
}

func TestGetServiceStatusRussianLine(t *testing.T) {
	inst, root := newTestInstance(t)
	logDir := filepath.Join(root, "ScadaComm", "Log")
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "ScadaCommSvc.txt"), []byte("Состояние: остановлен\n"), 0o644))

	ok, status := inst.GetServiceStatus(ServiceComm)
	require.True(t, ok)
	require.Equal(t, StatusStopped, status)
}

func TestControlServiceMissingFileFails(t *testing.T) {
	inst, _ := newTestInstance(t)
	ok, msg := inst.ControlService(ServiceServer, CommandStart)
	require.False(t, ok)
	require.NotEmpty(t, msg)
}

func TestBrowseListsImmediateChildren(t *testing.T) {
	inst, root := newTestInstance(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "BaseDAT", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "BaseDAT", "extra.txt"), []byte("x"), 0o644))

	dirs, files, err := inst.Browse(layout.RelPath{Part: layout.PartBase, Folder: layout.FolderRoot})
	require.NoError(t, err)
	require.Contains(t, dirs, "sub")
	require.Contains(t, files, "extra.txt")
	require.Contains(t, files, "user.dat")
}

func TestGetAbsPathRejectsEscape(t *testing.T) {
	inst, _ := newTestInstance(t)
	_, err := inst.GetAbsPath(layout.RelPath{Tail: "../../etc/passwd"})
	require.Error(t, err)
}

// TestUnpackConfigSerializesConcurrentCalls pins spec §8 scenario 6: two
// uploads against one instance, 10ms apart, where the second must block
// until the first's UnpackConfig returns rather than interleaving with
// it. The first call is driven through withLock directly (same package)
// with an injected sleep standing in for a slow unpack, since
// unpackConfig itself has no hook to slow down; the second call goes
// through the real, exported UnpackConfig.
func TestUnpackConfigSerializesConcurrentCalls(t *testing.T) {
	inst, root := newTestInstance(t)
	userDatPath := filepath.Join(root, "BaseDAT", "user.dat")

	archiveA := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, inst.PackConfig(archiveA, ConfigOptions{Parts: layout.PartBase}))

	require.NoError(t, os.WriteFile(userDatPath, EncodeUserDat([]UserRecord{
		{Name: "op2", Password: "pw2", RoleID: applicationRoleID},
	}), 0o644))
	archiveB := filepath.Join(t.TempDir(), "b.zip")
	require.NoError(t, inst.PackConfig(archiveB, ConfigOptions{Parts: layout.PartBase}))

	var wg sync.WaitGroup
	wg.Add(1)
	firstStarted := make(chan struct{})
	go func() {
		defer wg.Done()
		err := inst.withLock(func() error {
			close(firstStarted)
			time.Sleep(30 * time.Millisecond)
			return unpackConfig(inst.root, archiveA, ConfigOptions{Parts: layout.PartBase})
		})
		require.NoError(t, err)
	}()

	<-firstStarted
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, inst.UnpackConfig(archiveB, ConfigOptions{Parts: layout.PartBase}))

	wg.Wait()

	// Without serialization, the second call's unpack of archiveB would
	// complete well before the first goroutine wakes from its sleep and
	// overwrites with archiveA's contents, leaving "op" behind instead.
	// Only strict serialization leaves archiveB's record intact and last.
	records, err := ReadUserDat(userDatPath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "op2", records[0].Name)
}

func TestFindUserByNameCaseInsensitive(t *testing.T) {
	records := []UserRecord{{Name: "Admin", Password: "x", RoleID: 2}}
	rec, ok := FindUserByName(records, "admin")
	require.True(t, ok)
	require.Equal(t, "Admin", rec.Name)

	_, ok = FindUserByName(records, "nobody")
	require.False(t, ok)
}
