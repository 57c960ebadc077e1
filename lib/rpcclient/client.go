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

// Package rpcclient is the administrator side of the Agent's RPC surface:
// it dials an Agent, negotiates a session and login, then drives
// config download/upload, browsing, and service control against it.
package rpcclient

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rapidscada/agent/lib/config"
	"github.com/rapidscada/agent/lib/cryptosupport"
	"github.com/rapidscada/agent/lib/instance"
	"github.com/rapidscada/agent/lib/layout"
	"github.com/rapidscada/agent/rpc"
)

// ClientTransport is one administrator-side connection to an Agent,
// authenticated into a single instance's session.
type ClientTransport struct {
	conn      *grpc.ClientConn
	client    rpc.AgentServiceClient
	sessionID uint64
	secretKey []byte
}

// Connect dials profile.Host:Port, creates a session, and logs in. On any
// failure it tears down the dial and returns a plain error: per spec
// §4.8 a failed connect attempt must not leave an open session or
// connection behind.
func Connect(ctx context.Context, profile config.ConnectionProfile) (*ClientTransport, error) {
	addr := fmt.Sprintf("%s:%d", profile.Host, profile.Port)
	conn, err := grpc.DialContext(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, trace.Wrap(err, "dialing %s", addr)
	}

	t, err := connectOn(ctx, conn, profile)
	if err != nil {
		conn.Close()
		return nil, trace.Wrap(err)
	}
	return t, nil
}

// connectOn is split out from Connect so tests can supply an in-process
// *grpc.ClientConn (e.g. over bufconn) without a real dial.
func connectOn(ctx context.Context, conn *grpc.ClientConn, profile config.ConnectionProfile) (*ClientTransport, error) {
	client := rpc.NewAgentServiceClient(conn)

	createResp, err := client.CreateSession(ctx, &rpc.CreateSessionRequest{})
	if err != nil {
		return nil, trace.Wrap(err, "creating session")
	}
	if !createResp.OK {
		return nil, trace.LimitExceeded("agent refused to create a session")
	}

	encrypted, err := cryptosupport.EncryptPassword(profile.Password, createResp.SessionID, profile.SecretKey)
	if err != nil {
		return nil, trace.Wrap(err, "encrypting password")
	}

	loginResp, err := client.Login(ctx, &rpc.LoginRequest{
		SessionID:         createResp.SessionID,
		Username:          profile.Username,
		EncryptedPassword: encrypted,
		InstanceName:      profile.InstanceName,
	})
	if err != nil {
		return nil, trace.Wrap(err, "logging in")
	}
	if !loginResp.OK {
		return nil, trace.AccessDenied("login failed: %s", loginResp.ErrMsg)
	}

	return &ClientTransport{
		conn:      conn,
		client:    client,
		sessionID: createResp.SessionID,
		secretKey: profile.SecretKey,
	}, nil
}

// Close releases the underlying connection. It does not attempt to
// notify the agent; sessions expire on their own via SessionTTL.
func (t *ClientTransport) Close() error {
	return t.conn.Close()
}

// IsLoggedOn reports whether the session backing t is still logged in,
// e.g. to detect expiry before a long-running operation.
func (t *ClientTransport) IsLoggedOn(ctx context.Context) (bool, error) {
	resp, err := t.client.IsLoggedOn(ctx, &rpc.IsLoggedOnRequest{SessionID: t.sessionID})
	if err != nil {
		return false, trace.Wrap(err)
	}
	return resp.LoggedOn, nil
}

// ControlService forwards a start/stop/restart command to the named
// service on the logged-in instance.
func (t *ClientTransport) ControlService(ctx context.Context, kind instance.ServiceKind, command instance.ServiceCommand) (bool, string, error) {
	resp, err := t.client.ControlService(ctx, &rpc.ControlServiceRequest{
		SessionID: t.sessionID,
		Kind:      kind,
		Command:   command,
	})
	if err != nil {
		return false, "", trace.Wrap(err)
	}
	return resp.OK, resp.ErrMsg, nil
}

// GetServiceStatus reads the current status of a service on the
// logged-in instance.
func (t *ClientTransport) GetServiceStatus(ctx context.Context, kind instance.ServiceKind) (bool, instance.ServiceStatus, error) {
	resp, err := t.client.GetServiceStatus(ctx, &rpc.GetServiceStatusRequest{SessionID: t.sessionID, Kind: kind})
	if err != nil {
		return false, instance.StatusUndefined, trace.Wrap(err)
	}
	return resp.OK, resp.Status, nil
}

// Browse lists the immediate subdirectories and files under relPath on
// the logged-in instance.
func (t *ClientTransport) Browse(ctx context.Context, relPath layout.RelPath) (dirs, files []string, err error) {
	resp, err := t.client.Browse(ctx, &rpc.BrowseRequest{SessionID: t.sessionID, RelPath: relPath})
	if err != nil {
		return nil, nil, trace.Wrap(err)
	}
	if !resp.OK {
		return nil, nil, trace.NotFound("path not found")
	}
	return resp.Dirs, resp.Files, nil
}

// DownloadConfig retrieves the parts named by plan from the agent and
// applies them locally: straight to plan.Path when plan.IsArchive,
// otherwise unpacked into the plan.Path directory (spec §4.8).
func (t *ClientTransport) DownloadConfig(ctx context.Context, plan TransferPlan) error {
	available, err := t.client.GetAvailableConfig(ctx, &rpc.GetAvailableConfigRequest{SessionID: t.sessionID})
	if err != nil {
		return trace.Wrap(err)
	}
	if !available.OK {
		return trace.AccessDenied("session is not logged in")
	}

	parts := plan.Parts & available.Parts
	if parts == layout.PartNone {
		return trace.BadParameter("none of the requested parts are available on this instance")
	}

	options := instance.ConfigOptions{Parts: parts, Ignore: deriveIgnore(plan)}
	stream, err := t.client.DownloadConfig(ctx, &rpc.DownloadConfigRequest{SessionID: t.sessionID, Options: options})
	if err != nil {
		return trace.Wrap(err, "starting download")
	}

	archivePath := plan.Path
	tmpArchive := ""
	if !plan.IsArchive {
		tmpArchive = filepath.Join(os.TempDir(), fmt.Sprintf("scada-download-%d.zip", t.sessionID))
		archivePath = tmpArchive
		defer os.Remove(tmpArchive)
	}

	if err := receiveToFile(stream, archivePath); err != nil {
		return trace.Wrap(err, "receiving config")
	}

	if plan.IsArchive {
		return nil
	}

	if err := os.MkdirAll(plan.Path, 0o755); err != nil {
		return trace.Wrap(err, "creating destination directory")
	}
	return unpackLocalZip(plan.Path, tmpArchive, parts, options.Ignore, plan.ClearBeforeWrite)
}

// configChunkStream is the minimal interface shared by the typed
// download streams, letting receiveToFile work for either caller.
type configChunkStream interface {
	Recv() (*rpc.Chunk, error)
}

func receiveToFile(stream configChunkStream, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return trace.Wrap(err, "creating %s", destPath)
	}
	defer out.Close()

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return trace.Wrap(err)
		}
		if _, err := out.Write(chunk.Data); err != nil {
			return trace.Wrap(err, "writing %s", destPath)
		}
	}
}

// chunkSize is the size of each UploadConfigChunk payload sent to the
// agent. The agent-side streamFile chunker in lib/rpcserver uses its own,
// smaller 32 KiB size; the two are independent.
const chunkSize = 64 * 1024

// UploadConfig packs (or reads, if plan.IsArchive) the local source named
// by plan.Path and streams it to the agent for unpacking (spec §4.8). In
// directory mode, a user.csv present under BaseDAT is compiled into
// user.dat before packing.
func (t *ClientTransport) UploadConfig(ctx context.Context, plan TransferPlan) error {
	archivePath := plan.Path
	tmpArchive := ""
	if !plan.IsArchive {
		if plan.Parts.Has(layout.PartBase) {
			if err := convertBaseToDat(plan.Path); err != nil {
				return trace.Wrap(err)
			}
		}
		tmpArchive = filepath.Join(os.TempDir(), fmt.Sprintf("scada-upload-%d.zip", t.sessionID))
		archivePath = tmpArchive
		defer os.Remove(tmpArchive)
		if err := packLocalConfig(plan.Path, tmpArchive, plan.Parts, deriveIgnore(plan)); err != nil {
			return trace.Wrap(err, "packing config")
		}
	}

	stream, err := t.client.UploadConfig(ctx)
	if err != nil {
		return trace.Wrap(err, "starting upload")
	}

	if err := stream.Send(&rpc.UploadConfigChunk{Metadata: &rpc.UploadConfigMetadata{
		SessionID: t.sessionID,
		Options:   instance.ConfigOptions{Parts: plan.Parts, Ignore: deriveIgnore(plan)},
	}}); err != nil {
		return trace.Wrap(err, "sending metadata")
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return trace.Wrap(err, "opening %s", archivePath)
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if err := stream.Send(&rpc.UploadConfigChunk{Data: data}); err != nil {
				return trace.Wrap(err, "sending chunk")
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return trace.Wrap(readErr, "reading %s", archivePath)
		}
	}

	resp, err := stream.CloseAndRecv()
	if err != nil {
		return trace.Wrap(err, "closing upload")
	}
	if !resp.OK {
		return trace.BadParameter("upload rejected: %s", resp.ErrMsg)
	}
	return nil
}
