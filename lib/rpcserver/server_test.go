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

package rpcserver

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/rapidscada/agent/lib/authn"
	"github.com/rapidscada/agent/lib/config"
	"github.com/rapidscada/agent/lib/cryptosupport"
	"github.com/rapidscada/agent/lib/instance"
	"github.com/rapidscada/agent/lib/layout"
	"github.com/rapidscada/agent/lib/session"
	"github.com/rapidscada/agent/rpc"
)

// fakeServerStream is a minimal grpc.ServerStream stub; the rpcserver
// handlers under test only ever call Send/Recv/SendAndClose, which the
// embedding fakes below override directly.
type fakeServerStream struct {
	grpc.ServerStream
}

func (fakeServerStream) Context() context.Context { return context.Background() }

type fakeDownloadStream struct {
	fakeServerStream
	chunks []*rpc.Chunk
}

func (f *fakeDownloadStream) Send(c *rpc.Chunk) error {
	f.chunks = append(f.chunks, c)
	return nil
}

type fakeUploadStream struct {
	fakeServerStream
	in   []*rpc.UploadConfigChunk
	pos  int
	resp *rpc.UploadConfigResponse
}

func (f *fakeUploadStream) Recv() (*rpc.UploadConfigChunk, error) {
	if f.pos >= len(f.in) {
		return nil, io.EOF
	}
	m := f.in[f.pos]
	f.pos++
	return m, nil
}

func (f *fakeUploadStream) SendAndClose(resp *rpc.UploadConfigResponse) error {
	f.resp = resp
	return nil
}

func setupServer(t *testing.T) (*Server, *instance.Registry, *session.Store) {
	t.Helper()
	root := t.TempDir()
	userDat := filepath.Join(root, "BaseDAT", "user.dat")
	require.NoError(t, os.MkdirAll(filepath.Dir(userDat), 0o755))
	require.NoError(t, os.WriteFile(userDat, instance.EncodeUserDat([]instance.UserRecord{
		{Name: "op", Password: "pw", RoleID: 2},
	}), 0o644))

	settings := &config.AgentSettings{
		SecretKey: []byte("0123456789abcdef"),
		Instances: []config.InstanceSettings{{Name: "site1", Directory: root}},
	}
	registry := instance.NewRegistry(settings, authn.DenyAll{})
	sessions := session.NewStore(clockwork.NewFakeClock())
	tempDir := t.TempDir()

	srv, err := New(Config{
		Registry:  registry,
		Sessions:  sessions,
		SecretKey: settings.SecretKey,
		TempDir:   tempDir,
	})
	require.NoError(t, err)
	return srv, registry, sessions
}

func loggedInSession(t *testing.T, srv *Server, sessions *session.Store) uint64 {
	t.Helper()
	ctx := context.Background()
	createResp, err := srv.CreateSession(ctx, &rpc.CreateSessionRequest{})
	require.NoError(t, err)
	require.True(t, createResp.OK)

	encrypted, err := cryptosupport.EncryptPassword("pw", createResp.SessionID, srv.cfg.SecretKey)
	require.NoError(t, err)

	loginResp, err := srv.Login(ctx, &rpc.LoginRequest{
		SessionID:         createResp.SessionID,
		Username:          "op",
		EncryptedPassword: encrypted,
		InstanceName:      "site1",
	})
	require.NoError(t, err)
	require.True(t, loginResp.OK, loginResp.ErrMsg)
	return createResp.SessionID
}

func TestCreateSessionAllocatesID(t *testing.T) {
	srv, _, _ := setupServer(t)
	resp, err := srv.CreateSession(context.Background(), &rpc.CreateSessionRequest{})
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.NotZero(t, resp.SessionID)
}

func TestLoginWrongPasswordFails(t *testing.T) {
	srv, _, _ := setupServer(t)
	createResp, _ := srv.CreateSession(context.Background(), &rpc.CreateSessionRequest{})

	encrypted, err := cryptosupport.EncryptPassword("wrong", createResp.SessionID, srv.cfg.SecretKey)
	require.NoError(t, err)

	resp, err := srv.Login(context.Background(), &rpc.LoginRequest{
		SessionID:         createResp.SessionID,
		Username:          "op",
		EncryptedPassword: encrypted,
		InstanceName:      "site1",
	})
	require.NoError(t, err)
	require.False(t, resp.OK)
}

func TestLoginThenIsLoggedOn(t *testing.T) {
	srv, _, sessions := setupServer(t)
	id := loggedInSession(t, srv, sessions)

	resp, err := srv.IsLoggedOn(context.Background(), &rpc.IsLoggedOnRequest{SessionID: id})
	require.NoError(t, err)
	require.True(t, resp.LoggedOn)
}

func TestGetAvailableConfigRequiresLogin(t *testing.T) {
	srv, _, sessions := setupServer(t)
	createResp, _ := srv.CreateSession(context.Background(), &rpc.CreateSessionRequest{})

	resp, err := srv.GetAvailableConfig(context.Background(), &rpc.GetAvailableConfigRequest{SessionID: createResp.SessionID})
	require.NoError(t, err)
	require.False(t, resp.OK, "an unauthenticated session must not see available config")

	id := loggedInSession(t, srv, sessions)
	resp, err = srv.GetAvailableConfig(context.Background(), &rpc.GetAvailableConfigRequest{SessionID: id})
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.True(t, resp.Parts.Has(layout.PartBase))
}

func TestDownloadConfigStreamsPackedArchive(t *testing.T) {
	srv, _, sessions := setupServer(t)
	id := loggedInSession(t, srv, sessions)

	stream := &fakeDownloadStream{}
	err := srv.DownloadConfig(&rpc.DownloadConfigRequest{SessionID: id, Options: instance.ConfigOptions{Parts: layout.PartBase}}, stream)
	require.NoError(t, err)
	require.NotEmpty(t, stream.chunks)
}

func TestUploadConfigAppliesUnpack(t *testing.T) {
	srv, registry, sessions := setupServer(t)
	id := loggedInSession(t, srv, sessions)

	// Produce a real archive via DownloadConfig first so UploadConfig has
	// well-formed bytes to apply.
	download := &fakeDownloadStream{}
	require.NoError(t, srv.DownloadConfig(&rpc.DownloadConfigRequest{SessionID: id, Options: instance.ConfigOptions{Parts: layout.PartBase}}, download))

	var archive []byte
	for _, c := range download.chunks {
		archive = append(archive, c.Data...)
	}
	require.NotEmpty(t, archive)

	upload := &fakeUploadStream{in: []*rpc.UploadConfigChunk{
		{Metadata: &rpc.UploadConfigMetadata{SessionID: id, Options: instance.ConfigOptions{Parts: layout.PartBase}}},
		{Data: archive},
	}}
	require.NoError(t, srv.UploadConfig(upload))
	require.NotNil(t, upload.resp)
	require.True(t, upload.resp.OK, upload.resp.ErrMsg)

	inst := registry.Get("site1")
	require.NotNil(t, inst)
}

func TestBrowseListsInstanceChildren(t *testing.T) {
	srv, _, sessions := setupServer(t)
	id := loggedInSession(t, srv, sessions)

	resp, err := srv.Browse(context.Background(), &rpc.BrowseRequest{
		SessionID: id,
		RelPath:   layout.RelPath{Part: layout.PartBase, Folder: layout.FolderRoot},
	})
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Contains(t, resp.Files, "user.dat")
}

func TestDownloadFileRestSeeksFromEnd(t *testing.T) {
	srv, registry, sessions := setupServer(t)
	id := loggedInSession(t, srv, sessions)

	inst := registry.Get("site1")
	require.NotNil(t, inst)

	content := make([]byte, 100)
	for i := range content {
		content[i] = byte(i)
	}
	filePath := filepath.Join(inst.Root(), "BaseDAT", "bigfile.dat")
	require.NoError(t, os.WriteFile(filePath, content, 0o644))

	relPath := layout.RelPath{Part: layout.PartBase, Folder: layout.FolderRoot, Tail: "bigfile.dat"}

	// offsetFromEnd=30 on a 100-byte file: 30 bytes starting at byte 70.
	partial := &fakeDownloadStream{}
	require.NoError(t, srv.DownloadFileRest(&rpc.DownloadFileRestRequest{
		SessionID: id, RelPath: relPath, OffsetFromEnd: 30,
	}, partial))
	var partialData []byte
	for _, c := range partial.chunks {
		partialData = append(partialData, c.Data...)
	}
	require.Equal(t, content[70:], partialData)

	// offsetFromEnd=1000 exceeds the file size: clamp to the full file.
	full := &fakeDownloadStream{}
	require.NoError(t, srv.DownloadFileRest(&rpc.DownloadFileRestRequest{
		SessionID: id, RelPath: relPath, OffsetFromEnd: 1000,
	}, full))
	var fullData []byte
	for _, c := range full.chunks {
		fullData = append(fullData, c.Data...)
	}
	require.Equal(t, content, fullData)
}

func TestGetFileAgeUtcMissingFileReturnsZeroTime(t *testing.T) {
	srv, _, sessions := setupServer(t)
	id := loggedInSession(t, srv, sessions)

	resp, err := srv.GetFileAgeUtc(context.Background(), &rpc.GetFileAgeUtcRequest{
		SessionID: id,
		RelPath:   layout.RelPath{Part: layout.PartBase, Folder: layout.FolderRoot, Tail: "nonexistent.txt"},
	})
	require.NoError(t, err)
	require.True(t, resp.ModTime.IsZero())
}
