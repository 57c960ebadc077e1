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

// Package rpcserver implements the Agent's authenticated RPC dispatch
// (spec §4.7) over the message types and gRPC plumbing declared in
// package rpc.
package rpcserver

import (
	"context"
	"io"
	"os"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/peer"

	"github.com/rapidscada/agent/constants"
	"github.com/rapidscada/agent/lib/cryptosupport"
	"github.com/rapidscada/agent/lib/instance"
	"github.com/rapidscada/agent/lib/session"
	"github.com/rapidscada/agent/rpc"
)

// streamChunkSize bounds each Chunk sent over a streaming RPC.
const streamChunkSize = 32 * 1024

// Config configures a Server.
type Config struct {
	Registry  *instance.Registry
	Sessions  *session.Store
	SecretKey []byte
	TempDir   string
	Log       *logrus.Entry
}

func (c *Config) checkAndSetDefaults() error {
	if c.Registry == nil {
		return trace.BadParameter("Registry must be provided")
	}
	if c.Sessions == nil {
		return trace.BadParameter("Sessions must be provided")
	}
	if err := cryptosupport.ValidateSecretKey(c.SecretKey); err != nil {
		return trace.Wrap(err)
	}
	if c.TempDir == "" {
		return trace.BadParameter("TempDir must be provided")
	}
	if c.Log == nil {
		c.Log = logrus.WithField(trace.Component, constants.ComponentRPCServer)
	}
	return nil
}

// Server implements rpc.AgentServiceServer.
type Server struct {
	cfg             Config
	tempFileCounter uint64
}

var _ rpc.AgentServiceServer = (*Server)(nil)

// New constructs a Server.
func New(cfg Config) (*Server, error) {
	if err := cfg.checkAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Server{cfg: cfg}, nil
}

// resolveSession looks up sessionID, refusing unknown ids, and (when
// requireLogin is set) verifies the session is authenticated and bound to
// an Instance. Store.Get already touches lastActivity (spec §4.7).
func (s *Server) resolveSession(sessionID uint64, requireLogin bool) (*session.Session, *instance.Instance, error) {
	sess := s.cfg.Sessions.Get(sessionID)
	if sess == nil {
		return nil, nil, trace.NotFound("unknown session %d", sessionID)
	}
	if !requireLogin {
		return sess, nil, nil
	}
	if !sess.IsLoggedOn() {
		return nil, nil, trace.AccessDenied("session %d is not logged on", sessionID)
	}
	inst := sess.Instance()
	if inst == nil {
		return nil, nil, trace.AccessDenied("session %d has no bound instance", sessionID)
	}
	return sess, inst, nil
}

func clientAddr(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	return p.Addr.String()
}

// CreateSession is the only operation that does not require an existing
// session (spec §4.7 op 1).
func (s *Server) CreateSession(ctx context.Context, _ *rpc.CreateSessionRequest) (*rpc.CreateSessionResponse, error) {
	sess, err := s.cfg.Sessions.Create(clientAddr(ctx))
	if err != nil {
		s.cfg.Log.WithError(err).Warn("failed to create session")
		return &rpc.CreateSessionResponse{OK: false}, nil
	}
	sessionsCreatedTotal.Inc()
	return &rpc.CreateSessionResponse{OK: true, SessionID: sess.ID()}, nil
}

// Login resolves the session and instance, decrypts the password
// tolerantly, and delegates credential matching to Instance.ValidateUser
// (spec §4.7 op 2).
func (s *Server) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	sess, _, err := s.resolveSession(req.SessionID, false)
	if err != nil {
		return &rpc.LoginResponse{OK: false, ErrMsg: "unknown session"}, nil
	}
	sess.ClearUser()

	inst := s.cfg.Registry.Get(req.InstanceName)
	if inst == nil {
		loginResultTotal.WithLabelValues("unknown_instance").Inc()
		return &rpc.LoginResponse{OK: false, ErrMsg: "unknown instance"}, nil
	}

	password := cryptosupport.DecryptPasswordTolerant(req.EncryptedPassword, req.SessionID, s.cfg.SecretKey)
	ok, errMsg := inst.ValidateUser(req.Username, password)
	if !ok {
		loginResultTotal.WithLabelValues("denied").Inc()
		return &rpc.LoginResponse{OK: false, ErrMsg: errMsg}, nil
	}

	sess.SetUser(req.Username, inst)
	loginResultTotal.WithLabelValues("ok").Inc()
	return &rpc.LoginResponse{OK: true}, nil
}

// IsLoggedOn (spec §4.7 op 3).
func (s *Server) IsLoggedOn(_ context.Context, req *rpc.IsLoggedOnRequest) (*rpc.IsLoggedOnResponse, error) {
	sess, _, err := s.resolveSession(req.SessionID, false)
	if err != nil {
		return &rpc.IsLoggedOnResponse{LoggedOn: false}, nil
	}
	return &rpc.IsLoggedOnResponse{LoggedOn: sess.IsLoggedOn()}, nil
}

// ControlService requires a logged-on session bound to the target
// instance (spec §4.7 op 4).
func (s *Server) ControlService(_ context.Context, req *rpc.ControlServiceRequest) (*rpc.ControlServiceResponse, error) {
	_, inst, err := s.resolveSession(req.SessionID, true)
	if err != nil {
		return &rpc.ControlServiceResponse{OK: false, ErrMsg: err.Error()}, nil
	}
	ok, errMsg := inst.ControlService(req.Kind, req.Command)
	return &rpc.ControlServiceResponse{OK: ok, ErrMsg: errMsg}, nil
}

// GetServiceStatus (spec §4.7 op 5).
func (s *Server) GetServiceStatus(_ context.Context, req *rpc.GetServiceStatusRequest) (*rpc.GetServiceStatusResponse, error) {
	_, inst, err := s.resolveSession(req.SessionID, true)
	if err != nil {
		return &rpc.GetServiceStatusResponse{OK: false}, nil
	}
	ok, status := inst.GetServiceStatus(req.Kind)
	return &rpc.GetServiceStatusResponse{OK: ok, Status: status}, nil
}

// GetAvailableConfig (spec §4.7 op 6).
func (s *Server) GetAvailableConfig(_ context.Context, req *rpc.GetAvailableConfigRequest) (*rpc.GetAvailableConfigResponse, error) {
	_, inst, err := s.resolveSession(req.SessionID, true)
	if err != nil {
		return &rpc.GetAvailableConfigResponse{OK: false}, nil
	}
	return &rpc.GetAvailableConfigResponse{OK: true, Parts: inst.GetAvailableConfig()}, nil
}

// DownloadConfig packs the requested parts into a freshly named temp file
// and streams it back. The handler reads the file to the end and closes
// it before returning, but does not delete it; AgentLoop's sweeper
// removes it later (spec §4.7 op 7).
func (s *Server) DownloadConfig(req *rpc.DownloadConfigRequest, stream rpc.AgentService_DownloadConfigServer) error {
	_, inst, err := s.resolveSession(req.SessionID, true)
	if err != nil {
		return trace.Wrap(err)
	}

	path := s.tempFileName(s.cfg.TempDir, "download-config", "zip")
	if err := inst.PackConfig(path, req.Options); err != nil {
		return trace.Wrap(err)
	}
	configPacksTotal.Inc()

	f, err := os.Open(path)
	if err != nil {
		return trace.Wrap(err)
	}
	defer f.Close()

	return streamFile(f, stream)
}

// UploadConfig streams the client's payload into a temp file, then
// invokes Instance.UnpackConfig (spec §4.7 op 8).
func (s *Server) UploadConfig(stream rpc.AgentService_UploadConfigServer) error {
	first, err := stream.Recv()
	if err != nil {
		return trace.Wrap(err)
	}
	if first.Metadata == nil {
		return trace.BadParameter("UploadConfig stream must start with metadata")
	}

	_, inst, err := s.resolveSession(first.Metadata.SessionID, true)
	if err != nil {
		return stream.SendAndClose(&rpc.UploadConfigResponse{OK: false, ErrMsg: err.Error()})
	}

	path := s.tempFileName(s.cfg.TempDir, "upload-config", "zip")
	f, err := os.Create(path)
	if err != nil {
		return trace.Wrap(err)
	}

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return trace.Wrap(err)
		}
		if _, err := f.Write(chunk.Data); err != nil {
			f.Close()
			return trace.Wrap(err)
		}
	}
	if err := f.Close(); err != nil {
		return trace.Wrap(err)
	}

	if err := inst.UnpackConfig(path, first.Metadata.Options); err != nil {
		s.cfg.Log.WithError(err).Warn("failed to unpack uploaded configuration")
		return stream.SendAndClose(&rpc.UploadConfigResponse{OK: false, ErrMsg: err.Error()})
	}
	configUnpacksTotal.Inc()
	return stream.SendAndClose(&rpc.UploadConfigResponse{OK: true})
}

// Browse (spec §4.7 op 9).
func (s *Server) Browse(_ context.Context, req *rpc.BrowseRequest) (*rpc.BrowseResponse, error) {
	_, inst, err := s.resolveSession(req.SessionID, true)
	if err != nil {
		return &rpc.BrowseResponse{OK: false}, nil
	}
	dirs, files, err := inst.Browse(req.RelPath)
	if err != nil {
		return &rpc.BrowseResponse{OK: false}, nil
	}
	return &rpc.BrowseResponse{OK: true, Dirs: dirs, Files: files}, nil
}

// GetFileAgeUtc returns the zero time when the file does not exist
// (spec §4.7 op 10).
func (s *Server) GetFileAgeUtc(_ context.Context, req *rpc.GetFileAgeUtcRequest) (*rpc.GetFileAgeUtcResponse, error) {
	_, inst, err := s.resolveSession(req.SessionID, true)
	if err != nil {
		return &rpc.GetFileAgeUtcResponse{}, nil
	}
	abs, err := inst.GetAbsPath(req.RelPath)
	if err != nil {
		return &rpc.GetFileAgeUtcResponse{}, nil
	}
	info, err := os.Stat(abs)
	if err != nil {
		return &rpc.GetFileAgeUtcResponse{}, nil
	}
	return &rpc.GetFileAgeUtcResponse{ModTime: info.ModTime().UTC()}, nil
}

// DownloadFile opens relPath for shared read and streams it whole
// (spec §4.7 op 11).
func (s *Server) DownloadFile(req *rpc.DownloadFileRequest, stream rpc.AgentService_DownloadFileServer) error {
	_, inst, err := s.resolveSession(req.SessionID, true)
	if err != nil {
		return nil // file-not-found/not-authorized both surface as an empty stream
	}
	abs, err := inst.GetAbsPath(req.RelPath)
	if err != nil {
		return nil
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil
	}
	defer f.Close()
	return streamFile(f, stream)
}

// DownloadFileRest behaves like DownloadFile but seeks to
// max(0, length-offsetFromEnd) first, letting a client resume a partially
// read file (spec §4.7 op 11).
func (s *Server) DownloadFileRest(req *rpc.DownloadFileRestRequest, stream rpc.AgentService_DownloadFileRestServer) error {
	_, inst, err := s.resolveSession(req.SessionID, true)
	if err != nil {
		return nil
	}
	abs, err := inst.GetAbsPath(req.RelPath)
	if err != nil {
		return nil
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil
	}
	offset := req.OffsetFromEnd
	if offset < 0 {
		offset = 0
	}
	if offset > info.Size() {
		offset = info.Size()
	}
	if _, err := f.Seek(-offset, io.SeekEnd); err != nil {
		return trace.Wrap(err)
	}

	return streamFile(f, stream)
}

type chunkSender interface {
	Send(*rpc.Chunk) error
}

func streamFile(f *os.File, stream chunkSender) error {
	buf := make([]byte, streamChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if sendErr := stream.Send(&rpc.Chunk{Data: data}); sendErr != nil {
				return trace.Wrap(sendErr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return trace.Wrap(err)
		}
	}
}
