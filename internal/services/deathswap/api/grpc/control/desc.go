package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name, also used for health.
const ServiceName = "deathswap.v1.RoundService"

const (
	methodStartRound  = "/" + ServiceName + "/StartRound"
	methodEndRound    = "/" + ServiceName + "/EndRound"
	methodGetRound    = "/" + ServiceName + "/GetRound"
	methodListRounds  = "/" + ServiceName + "/ListRounds"
	methodPlayerJoin  = "/" + ServiceName + "/PlayerJoin"
	methodPlayerQuit  = "/" + ServiceName + "/PlayerQuit"
	methodPlayerDeath = "/" + ServiceName + "/PlayerDeath"
)

// RoundServiceServer is the server API for deathswap.v1.RoundService. The
// messages are protobuf well-known types, so no generated code is needed.
type RoundServiceServer interface {
	StartRound(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	EndRound(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetRound(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListRounds(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	PlayerJoin(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	PlayerQuit(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	PlayerDeath(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

// UnimplementedRoundServiceServer answers every method with Unimplemented.
type UnimplementedRoundServiceServer struct{}

func (UnimplementedRoundServiceServer) StartRound(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method StartRound not implemented")
}
func (UnimplementedRoundServiceServer) EndRound(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method EndRound not implemented")
}
func (UnimplementedRoundServiceServer) GetRound(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRound not implemented")
}
func (UnimplementedRoundServiceServer) ListRounds(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRounds not implemented")
}
func (UnimplementedRoundServiceServer) PlayerJoin(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method PlayerJoin not implemented")
}
func (UnimplementedRoundServiceServer) PlayerQuit(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method PlayerQuit not implemented")
}
func (UnimplementedRoundServiceServer) PlayerDeath(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method PlayerDeath not implemented")
}

// RegisterRoundServiceServer registers srv on s.
func RegisterRoundServiceServer(s grpc.ServiceRegistrar, srv RoundServiceServer) {
	s.RegisterService(&RoundServiceDesc, srv)
}

// unary adapts one typed method to a grpc.MethodDesc handler.
func unary[Req any, Resp any](fullMethod string, call func(RoundServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RoundServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RoundServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RoundServiceDesc describes deathswap.v1.RoundService.
var RoundServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RoundServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartRound", Handler: unary(methodStartRound, RoundServiceServer.StartRound)},
		{MethodName: "EndRound", Handler: unary(methodEndRound, RoundServiceServer.EndRound)},
		{MethodName: "GetRound", Handler: unary(methodGetRound, RoundServiceServer.GetRound)},
		{MethodName: "ListRounds", Handler: unary(methodListRounds, RoundServiceServer.ListRounds)},
		{MethodName: "PlayerJoin", Handler: unary(methodPlayerJoin, RoundServiceServer.PlayerJoin)},
		{MethodName: "PlayerQuit", Handler: unary(methodPlayerQuit, RoundServiceServer.PlayerQuit)},
		{MethodName: "PlayerDeath", Handler: unary(methodPlayerDeath, RoundServiceServer.PlayerDeath)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "deathswap/v1/round.proto",
}

// RoundServiceClient calls deathswap.v1.RoundService.
type RoundServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRoundServiceClient returns a client over cc.
func NewRoundServiceClient(cc grpc.ClientConnInterface) *RoundServiceClient {
	return &RoundServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RoundServiceClient) StartRound(ctx context.Context, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c.cc, methodStartRound, &emptypb.Empty{}, opts...)
	return err
}

func (c *RoundServiceClient) EndRound(ctx context.Context, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c.cc, methodEndRound, &emptypb.Empty{}, opts...)
	return err
}

func (c *RoundServiceClient) GetRound(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, methodGetRound, &emptypb.Empty{}, opts...)
}

func (c *RoundServiceClient) ListRounds(ctx context.Context, limit int32, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, methodListRounds, wrapperspb.Int32(limit), opts...)
}

// PlayerJoin registers name with the host and returns the new identity.
func (c *RoundServiceClient) PlayerJoin(ctx context.Context, name string, opts ...grpc.CallOption) (string, error) {
	out, err := invoke[wrapperspb.StringValue](ctx, c.cc, methodPlayerJoin, wrapperspb.String(name), opts...)
	if err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *RoundServiceClient) PlayerQuit(ctx context.Context, id string, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c.cc, methodPlayerQuit, wrapperspb.String(id), opts...)
	return err
}

func (c *RoundServiceClient) PlayerDeath(ctx context.Context, id string, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c.cc, methodPlayerDeath, wrapperspb.String(id), opts...)
	return err
}
