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

package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the gRPC full service name under which the Agent's
// surface is registered, mirroring the "<package>.<Service>" shape
// protoc-gen-go-grpc would have produced from a .proto definition.
const ServiceName = "rapidscada.Agent"

// AgentServiceServer is implemented by lib/rpcserver and dispatches every
// operation of spec §4.7.
type AgentServiceServer interface {
	CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	IsLoggedOn(context.Context, *IsLoggedOnRequest) (*IsLoggedOnResponse, error)
	ControlService(context.Context, *ControlServiceRequest) (*ControlServiceResponse, error)
	GetServiceStatus(context.Context, *GetServiceStatusRequest) (*GetServiceStatusResponse, error)
	GetAvailableConfig(context.Context, *GetAvailableConfigRequest) (*GetAvailableConfigResponse, error)
	Browse(context.Context, *BrowseRequest) (*BrowseResponse, error)
	GetFileAgeUtc(context.Context, *GetFileAgeUtcRequest) (*GetFileAgeUtcResponse, error)
	DownloadConfig(*DownloadConfigRequest, AgentService_DownloadConfigServer) error
	UploadConfig(AgentService_UploadConfigServer) error
	DownloadFile(*DownloadFileRequest, AgentService_DownloadFileServer) error
	DownloadFileRest(*DownloadFileRestRequest, AgentService_DownloadFileRestServer) error
}

// AgentService_DownloadConfigServer is the server-side handle for the
// DownloadConfig server-streaming RPC.
type AgentService_DownloadConfigServer interface {
	Send(*Chunk) error
	grpc.ServerStream
}

type agentServiceDownloadConfigServer struct {
	grpc.ServerStream
}

func (s *agentServiceDownloadConfigServer) Send(c *Chunk) error {
	return s.ServerStream.SendMsg(c)
}

// AgentService_UploadConfigServer is the server-side handle for the
// UploadConfig client-streaming RPC.
type AgentService_UploadConfigServer interface {
	Recv() (*UploadConfigChunk, error)
	SendAndClose(*UploadConfigResponse) error
	grpc.ServerStream
}

type agentServiceUploadConfigServer struct {
	grpc.ServerStream
}

func (s *agentServiceUploadConfigServer) Recv() (*UploadConfigChunk, error) {
	m := new(UploadConfigChunk)
	if err := s.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *agentServiceUploadConfigServer) SendAndClose(resp *UploadConfigResponse) error {
	return s.ServerStream.SendMsg(resp)
}

// AgentService_DownloadFileServer is the server-side handle for the
// DownloadFile server-streaming RPC.
type AgentService_DownloadFileServer interface {
	Send(*Chunk) error
	grpc.ServerStream
}

type agentServiceDownloadFileServer struct {
	grpc.ServerStream
}

func (s *agentServiceDownloadFileServer) Send(c *Chunk) error {
	return s.ServerStream.SendMsg(c)
}

// AgentService_DownloadFileRestServer is the server-side handle for the
// DownloadFileRest server-streaming RPC.
type AgentService_DownloadFileRestServer interface {
	Send(*Chunk) error
	grpc.ServerStream
}

type agentServiceDownloadFileRestServer struct {
	grpc.ServerStream
}

func (s *agentServiceDownloadFileRestServer) Send(c *Chunk) error {
	return s.ServerStream.SendMsg(c)
}

func handlerCreateSession(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateSessionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServiceServer).CreateSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/CreateSession"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AgentServiceServer).CreateSession(ctx, req.(*CreateSessionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerLogin(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LoginRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServiceServer).Login(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Login"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AgentServiceServer).Login(ctx, req.(*LoginRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerIsLoggedOn(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(IsLoggedOnRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServiceServer).IsLoggedOn(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/IsLoggedOn"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AgentServiceServer).IsLoggedOn(ctx, req.(*IsLoggedOnRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerControlService(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ControlServiceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServiceServer).ControlService(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/ControlService"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AgentServiceServer).ControlService(ctx, req.(*ControlServiceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerGetServiceStatus(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetServiceStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServiceServer).GetServiceStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetServiceStatus"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AgentServiceServer).GetServiceStatus(ctx, req.(*GetServiceStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerGetAvailableConfig(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAvailableConfigRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServiceServer).GetAvailableConfig(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetAvailableConfig"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AgentServiceServer).GetAvailableConfig(ctx, req.(*GetAvailableConfigRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerBrowse(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BrowseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServiceServer).Browse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Browse"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AgentServiceServer).Browse(ctx, req.(*BrowseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerGetFileAgeUtc(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetFileAgeUtcRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServiceServer).GetFileAgeUtc(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetFileAgeUtc"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AgentServiceServer).GetFileAgeUtc(ctx, req.(*GetFileAgeUtcRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func streamDownloadConfig(srv interface{}, stream grpc.ServerStream) error {
	in := new(DownloadConfigRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(AgentServiceServer).DownloadConfig(in, &agentServiceDownloadConfigServer{stream})
}

func streamUploadConfig(srv interface{}, stream grpc.ServerStream) error {
	return srv.(AgentServiceServer).UploadConfig(&agentServiceUploadConfigServer{stream})
}

func streamDownloadFile(srv interface{}, stream grpc.ServerStream) error {
	in := new(DownloadFileRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(AgentServiceServer).DownloadFile(in, &agentServiceDownloadFileServer{stream})
}

func streamDownloadFileRest(srv interface{}, stream grpc.ServerStream) error {
	in := new(DownloadFileRestRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(AgentServiceServer).DownloadFileRest(in, &agentServiceDownloadFileRestServer{stream})
}

// ServiceDesc is registered against a grpc.Server by
// RegisterAgentServiceServer, standing in for the generated descriptor a
// .proto file would produce.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AgentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSession", Handler: handlerCreateSession},
		{MethodName: "Login", Handler: handlerLogin},
		{MethodName: "IsLoggedOn", Handler: handlerIsLoggedOn},
		{MethodName: "ControlService", Handler: handlerControlService},
		{MethodName: "GetServiceStatus", Handler: handlerGetServiceStatus},
		{MethodName: "GetAvailableConfig", Handler: handlerGetAvailableConfig},
		{MethodName: "Browse", Handler: handlerBrowse},
		{MethodName: "GetFileAgeUtc", Handler: handlerGetFileAgeUtc},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "DownloadConfig", Handler: streamDownloadConfig, ServerStreams: true},
		{StreamName: "UploadConfig", Handler: streamUploadConfig, ClientStreams: true},
		{StreamName: "DownloadFile", Handler: streamDownloadFile, ServerStreams: true},
		{StreamName: "DownloadFileRest", Handler: streamDownloadFileRest, ServerStreams: true},
	},
	Metadata: "rapidscada/agent.rpc",
}

// RegisterAgentServiceServer wires impl into grpcServer under ServiceDesc.
func RegisterAgentServiceServer(grpcServer grpc.ServiceRegistrar, impl AgentServiceServer) {
	grpcServer.RegisterService(&ServiceDesc, impl)
}

// AgentServiceClient is the administrator-side counterpart, implemented
// by agentServiceClient below and used by lib/rpcclient.
type AgentServiceClient interface {
	CreateSession(context.Context, *CreateSessionRequest, ...grpc.CallOption) (*CreateSessionResponse, error)
	Login(context.Context, *LoginRequest, ...grpc.CallOption) (*LoginResponse, error)
	IsLoggedOn(context.Context, *IsLoggedOnRequest, ...grpc.CallOption) (*IsLoggedOnResponse, error)
	ControlService(context.Context, *ControlServiceRequest, ...grpc.CallOption) (*ControlServiceResponse, error)
	GetServiceStatus(context.Context, *GetServiceStatusRequest, ...grpc.CallOption) (*GetServiceStatusResponse, error)
	GetAvailableConfig(context.Context, *GetAvailableConfigRequest, ...grpc.CallOption) (*GetAvailableConfigResponse, error)
	Browse(context.Context, *BrowseRequest, ...grpc.CallOption) (*BrowseResponse, error)
	GetFileAgeUtc(context.Context, *GetFileAgeUtcRequest, ...grpc.CallOption) (*GetFileAgeUtcResponse, error)
	DownloadConfig(ctx context.Context, in *DownloadConfigRequest, opts ...grpc.CallOption) (AgentService_DownloadConfigClient, error)
	UploadConfig(ctx context.Context, opts ...grpc.CallOption) (AgentService_UploadConfigClient, error)
	DownloadFile(ctx context.Context, in *DownloadFileRequest, opts ...grpc.CallOption) (AgentService_DownloadFileClient, error)
	DownloadFileRest(ctx context.Context, in *DownloadFileRestRequest, opts ...grpc.CallOption) (AgentService_DownloadFileRestClient, error)
}

type AgentService_DownloadConfigClient interface {
	Recv() (*Chunk, error)
	grpc.ClientStream
}

type AgentService_UploadConfigClient interface {
	Send(*UploadConfigChunk) error
	CloseAndRecv() (*UploadConfigResponse, error)
	grpc.ClientStream
}

type AgentService_DownloadFileClient interface {
	Recv() (*Chunk, error)
	grpc.ClientStream
}

type AgentService_DownloadFileRestClient interface {
	Recv() (*Chunk, error)
	grpc.ClientStream
}

type agentServiceClient struct {
	cc *grpc.ClientConn
}

// NewAgentServiceClient builds an AgentServiceClient over cc, forcing
// every call onto this package's gob Codec via CallContentSubtype.
func NewAgentServiceClient(cc *grpc.ClientConn) AgentServiceClient {
	return &agentServiceClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(ContentSubtype)}, opts...)
}

func (c *agentServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error) {
	out := new(CreateSessionResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/CreateSession", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *agentServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Login", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *agentServiceClient) IsLoggedOn(ctx context.Context, in *IsLoggedOnRequest, opts ...grpc.CallOption) (*IsLoggedOnResponse, error) {
	out := new(IsLoggedOnResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/IsLoggedOn", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *agentServiceClient) ControlService(ctx context.Context, in *ControlServiceRequest, opts ...grpc.CallOption) (*ControlServiceResponse, error) {
	out := new(ControlServiceResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/ControlService", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *agentServiceClient) GetServiceStatus(ctx context.Context, in *GetServiceStatusRequest, opts ...grpc.CallOption) (*GetServiceStatusResponse, error) {
	out := new(GetServiceStatusResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetServiceStatus", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *agentServiceClient) GetAvailableConfig(ctx context.Context, in *GetAvailableConfigRequest, opts ...grpc.CallOption) (*GetAvailableConfigResponse, error) {
	out := new(GetAvailableConfigResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetAvailableConfig", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *agentServiceClient) Browse(ctx context.Context, in *BrowseRequest, opts ...grpc.CallOption) (*BrowseResponse, error) {
	out := new(BrowseResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Browse", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *agentServiceClient) GetFileAgeUtc(ctx context.Context, in *GetFileAgeUtcRequest, opts ...grpc.CallOption) (*GetFileAgeUtcResponse, error) {
	out := new(GetFileAgeUtcResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetFileAgeUtc", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *agentServiceClient) DownloadConfig(ctx context.Context, in *DownloadConfigRequest, opts ...grpc.CallOption) (AgentService_DownloadConfigClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/DownloadConfig", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &agentServiceDownloadConfigClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type agentServiceDownloadConfigClient struct {
	grpc.ClientStream
}

func (x *agentServiceDownloadConfigClient) Recv() (*Chunk, error) {
	m := new(Chunk)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *agentServiceClient) UploadConfig(ctx context.Context, opts ...grpc.CallOption) (AgentService_UploadConfigClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[1], "/"+ServiceName+"/UploadConfig", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return &agentServiceUploadConfigClient{stream}, nil
}

type agentServiceUploadConfigClient struct {
	grpc.ClientStream
}

func (x *agentServiceUploadConfigClient) Send(c *UploadConfigChunk) error {
	return x.ClientStream.SendMsg(c)
}

func (x *agentServiceUploadConfigClient) CloseAndRecv() (*UploadConfigResponse, error) {
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(UploadConfigResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *agentServiceClient) DownloadFile(ctx context.Context, in *DownloadFileRequest, opts ...grpc.CallOption) (AgentService_DownloadFileClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[2], "/"+ServiceName+"/DownloadFile", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &agentServiceDownloadFileClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type agentServiceDownloadFileClient struct {
	grpc.ClientStream
}

func (x *agentServiceDownloadFileClient) Recv() (*Chunk, error) {
	m := new(Chunk)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *agentServiceClient) DownloadFileRest(ctx context.Context, in *DownloadFileRestRequest, opts ...grpc.CallOption) (AgentService_DownloadFileRestClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[3], "/"+ServiceName+"/DownloadFileRest", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &agentServiceDownloadFileRestClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type agentServiceDownloadFileRestClient struct {
	grpc.ClientStream
}

func (x *agentServiceDownloadFileRestClient) Recv() (*Chunk, error) {
	m := new(Chunk)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
