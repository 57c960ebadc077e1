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

// Package rpc defines the wire messages and transport codec for the
// Agent's RPC surface. Because no protobuf/gRPC code generator runs as
// part of building this module, the eleven operations of spec §4.7 are
// expressed as plain Go structs carried over real google.golang.org/grpc
// plumbing via a small gob-based Codec (see codec.go) instead of
// generated protoc-gen-go-grpc stubs.
package rpc

import (
	"time"

	"github.com/rapidscada/agent/lib/instance"
	"github.com/rapidscada/agent/lib/layout"
)

// CreateSessionRequest carries no fields; the caller is identified by its
// peer address, recorded server-side.
type CreateSessionRequest struct{}

type CreateSessionResponse struct {
	OK        bool
	SessionID uint64
}

type LoginRequest struct {
	SessionID         uint64
	Username          string
	EncryptedPassword []byte
	InstanceName      string
}

type LoginResponse struct {
	OK     bool
	ErrMsg string
}

type IsLoggedOnRequest struct {
	SessionID uint64
}

type IsLoggedOnResponse struct {
	LoggedOn bool
}

type ControlServiceRequest struct {
	SessionID uint64
	Kind      instance.ServiceKind
	Command   instance.ServiceCommand
}

type ControlServiceResponse struct {
	OK     bool
	ErrMsg string
}

type GetServiceStatusRequest struct {
	SessionID uint64
	Kind      instance.ServiceKind
}

type GetServiceStatusResponse struct {
	OK     bool
	Status instance.ServiceStatus
}

type GetAvailableConfigRequest struct {
	SessionID uint64
}

type GetAvailableConfigResponse struct {
	OK    bool
	Parts layout.ConfigPart
}

// DownloadConfigRequest is sent once at the start of the DownloadConfig
// server-stream; the server replies with a sequence of Chunk messages
// carrying the archive bytes.
type DownloadConfigRequest struct {
	SessionID uint64
	Options   instance.ConfigOptions
}

// UploadConfigMetadata describes the target of an UploadConfig
// client-stream: which session initiated it and which parts/ignore list
// govern the eventual UnpackConfig call.
type UploadConfigMetadata struct {
	SessionID uint64
	Options   instance.ConfigOptions
}

// UploadConfigChunk is the single repeated message type carried by the
// UploadConfig client-stream. The first message on the stream sets
// Metadata and leaves Data nil; every subsequent message leaves Metadata
// nil and carries one slice of archive bytes. This stands in for the
// oneof{Metadata, Chunk} a .proto definition would use.
type UploadConfigChunk struct {
	Metadata *UploadConfigMetadata
	Data     []byte
}

type UploadConfigResponse struct {
	OK     bool
	ErrMsg string
}

type BrowseRequest struct {
	SessionID uint64
	RelPath   layout.RelPath
}

type BrowseResponse struct {
	OK    bool
	Dirs  []string
	Files []string
}

type GetFileAgeUtcRequest struct {
	SessionID uint64
	RelPath   layout.RelPath
}

type GetFileAgeUtcResponse struct {
	// ModTime is the zero value when the file does not exist (spec §4.7).
	ModTime time.Time
}

type DownloadFileRequest struct {
	SessionID uint64
	RelPath   layout.RelPath
}

// DownloadFileRestRequest additionally seeks to max(0, length-OffsetFromEnd)
// before streaming, so a client can resume a partially read file.
type DownloadFileRestRequest struct {
	SessionID      uint64
	RelPath        layout.RelPath
	OffsetFromEnd  int64
}

// Chunk is the repeated message type of the server-streaming RPCs
// (DownloadConfig, DownloadFile, DownloadFileRest): raw archive or file
// bytes, in arrival order. UploadConfig carries its bytes in
// UploadConfigChunk instead. A
// zero-length final Chunk is not required; the stream's natural EOF marks
// the end of the payload.
type Chunk struct {
	Data []byte
}
