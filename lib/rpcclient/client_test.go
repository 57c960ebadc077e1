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
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rapidscada/agent/lib/authn"
	"github.com/rapidscada/agent/lib/config"
	"github.com/rapidscada/agent/lib/instance"
	"github.com/rapidscada/agent/lib/layout"
	"github.com/rapidscada/agent/lib/rpcserver"
	"github.com/rapidscada/agent/lib/session"
	"github.com/rapidscada/agent/rpc"
)

const bufSize = 1 << 20

// startTestAgent wires a real rpcserver.Server behind an in-process
// grpc.Server, reachable only through the returned bufconn dialer. This
// mirrors the teacher's own bufconn-backed client test harness rather
// than binding a real TCP port.
func startTestAgent(t *testing.T) (dial func(context.Context, string) (net.Conn, error), instanceRoot string, secretKey []byte) {
	t.Helper()

	instanceRoot = t.TempDir()
	userDat := filepath.Join(instanceRoot, "BaseDAT", "user.dat")
	require.NoError(t, os.MkdirAll(filepath.Dir(userDat), 0o755))
	require.NoError(t, os.WriteFile(userDat, instance.EncodeUserDat([]instance.UserRecord{
		{Name: "op", Password: "pw", RoleID: 2},
	}), 0o644))

	secretKey = []byte("0123456789abcdef")
	settings := &config.AgentSettings{
		SecretKey: secretKey,
		Instances: []config.InstanceSettings{{Name: "site1", Directory: instanceRoot}},
	}
	registry := instance.NewRegistry(settings, authn.DenyAll{})
	sessions := session.NewStore(clockwork.NewFakeClock())

	srv, err := rpcserver.New(rpcserver.Config{
		Registry:  registry,
		Sessions:  sessions,
		SecretKey: secretKey,
		TempDir:   t.TempDir(),
	})
	require.NoError(t, err)

	lis := bufconn.Listen(bufSize)
	gs := grpc.NewServer()
	rpc.RegisterAgentServiceServer(gs, srv)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	return func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}, instanceRoot, secretKey
}

func dialTestAgent(t *testing.T, dial func(context.Context, string) (net.Conn, error)) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(dial),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func testProfile(secretKey []byte) config.ConnectionProfile {
	return config.ConnectionProfile{
		Name:         "test",
		Username:     "op",
		Password:     "pw",
		InstanceName: "site1",
		SecretKey:    secretKey,
	}
}

func TestConnectLogsIn(t *testing.T) {
	dial, _, secretKey := startTestAgent(t)
	conn := dialTestAgent(t, dial)

	transport, err := connectOn(context.Background(), conn, testProfile(secretKey))
	require.NoError(t, err)
	require.NotZero(t, transport.sessionID)

	loggedOn, err := transport.IsLoggedOn(context.Background())
	require.NoError(t, err)
	require.True(t, loggedOn)
}

func TestConnectWrongPasswordFails(t *testing.T) {
	dial, _, secretKey := startTestAgent(t)
	conn := dialTestAgent(t, dial)

	profile := testProfile(secretKey)
	profile.Password = "wrong"
	_, err := connectOn(context.Background(), conn, profile)
	require.Error(t, err)
}

func TestDownloadConfigToDirectoryThenUploadRoundTrips(t *testing.T) {
	dial, _, secretKey := startTestAgent(t)
	conn := dialTestAgent(t, dial)

	transport, err := connectOn(context.Background(), conn, testProfile(secretKey))
	require.NoError(t, err)

	destDir := t.TempDir()
	plan := TransferPlan{Parts: layout.PartBase, Path: destDir}
	require.NoError(t, transport.DownloadConfig(context.Background(), plan))
	require.FileExists(t, filepath.Join(destDir, "BaseDAT", "user.dat"))

	uploadPlan := TransferPlan{Parts: layout.PartBase, Path: destDir}
	require.NoError(t, transport.UploadConfig(context.Background(), uploadPlan))
}

func TestDownloadConfigAsArchive(t *testing.T) {
	dial, _, secretKey := startTestAgent(t)
	conn := dialTestAgent(t, dial)

	transport, err := connectOn(context.Background(), conn, testProfile(secretKey))
	require.NoError(t, err)

	destZip := filepath.Join(t.TempDir(), "config.zip")
	plan := TransferPlan{Parts: layout.PartBase, Path: destZip, IsArchive: true}
	require.NoError(t, transport.DownloadConfig(context.Background(), plan))
	require.FileExists(t, destZip)
}

func TestBrowseListsUserDat(t *testing.T) {
	dial, _, secretKey := startTestAgent(t)
	conn := dialTestAgent(t, dial)

	transport, err := connectOn(context.Background(), conn, testProfile(secretKey))
	require.NoError(t, err)

	_, files, err := transport.Browse(context.Background(), layout.RelPath{Part: layout.PartBase, Folder: layout.FolderRoot})
	require.NoError(t, err)
	require.Contains(t, files, "user.dat")
}
