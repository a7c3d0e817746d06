package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jobfind.auth.v1.SessionService"

// Full method names, as seen by interceptors.
const (
	LoginMethod    = "/" + ServiceName + "/Login"
	RefreshMethod  = "/" + ServiceName + "/Refresh"
	LogoutMethod   = "/" + ServiceName + "/Logout"
	RegisterMethod = "/" + ServiceName + "/Register"
)

// SessionServiceServer is the server API. Requests and replies are
// protobuf well-known types so no generated code is needed:
//
//	Login     Struct{username, password}                 -> Struct{access_token, refresh_token, user}
//	Refresh   StringValue(refresh token)                 -> Struct{access_token, refresh_token, user}
//	Logout    Empty, "access_token" metadata required    -> Empty
//	Register  Struct{email, password, name, age, gender, address} -> Struct(user)
type SessionServiceServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Logout(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// unary adapts a typed method to grpc's method handler signature.
func unary[Req any, Resp any](fullMethod string, call func(SessionServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SessionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SessionServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SessionServiceDesc describes the service for grpc.Server.RegisterService.
var SessionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unary(LoginMethod, SessionServiceServer.Login)},
		{MethodName: "Refresh", Handler: unary(RefreshMethod, SessionServiceServer.Refresh)},
		{MethodName: "Logout", Handler: unary(LogoutMethod, SessionServiceServer.Logout)},
		{MethodName: "Register", Handler: unary(RegisterMethod, SessionServiceServer.Register)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobfind/auth/v1/session.proto",
}

// Client calls SessionService over conn.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, LoginMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Refresh(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, RefreshMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.conn.Invoke(ctx, LogoutMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, RegisterMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
