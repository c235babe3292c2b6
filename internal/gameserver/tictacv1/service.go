package tictacv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	TicTacToeService_CreateSession_FullMethodName = "/tictactoe.v1.TicTacToeService/CreateSession"
	TicTacToeService_ListSessions_FullMethodName  = "/tictactoe.v1.TicTacToeService/ListSessions"
	TicTacToeService_JoinSession_FullMethodName   = "/tictactoe.v1.TicTacToeService/JoinSession"
	TicTacToeService_MakeMove_FullMethodName      = "/tictactoe.v1.TicTacToeService/MakeMove"
	TicTacToeService_LeaveSession_FullMethodName  = "/tictactoe.v1.TicTacToeService/LeaveSession"
	TicTacToeService_ListResults_FullMethodName   = "/tictactoe.v1.TicTacToeService/ListResults"
)

// TicTacToeServiceClient is the client API for TicTacToeService.
type TicTacToeServiceClient interface {
	CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error)
	ListSessions(ctx context.Context, in *ListSessionsRequest, opts ...grpc.CallOption) (*ListSessionsResponse, error)
	// JoinSession seats the caller and streams every snapshot of the session
	// until the caller leaves, is dropped, or the session closes.
	JoinSession(ctx context.Context, in *JoinSessionRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[SessionState], error)
	MakeMove(ctx context.Context, in *MakeMoveRequest, opts ...grpc.CallOption) (*MakeMoveResponse, error)
	LeaveSession(ctx context.Context, in *LeaveSessionRequest, opts ...grpc.CallOption) (*LeaveSessionResponse, error)
	ListResults(ctx context.Context, in *ListResultsRequest, opts ...grpc.CallOption) (*ListResultsResponse, error)
}

type ticTacToeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTicTacToeServiceClient returns a client that sends every call with the
// JSON content-subtype.
func NewTicTacToeServiceClient(cc grpc.ClientConnInterface) TicTacToeServiceClient {
	return &ticTacToeServiceClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.StaticMethod(), grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *ticTacToeServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error) {
	out := new(CreateSessionResponse)
	if err := c.cc.Invoke(ctx, TicTacToeService_CreateSession_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ticTacToeServiceClient) ListSessions(ctx context.Context, in *ListSessionsRequest, opts ...grpc.CallOption) (*ListSessionsResponse, error) {
	out := new(ListSessionsResponse)
	if err := c.cc.Invoke(ctx, TicTacToeService_ListSessions_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ticTacToeServiceClient) JoinSession(ctx context.Context, in *JoinSessionRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[SessionState], error) {
	stream, err := c.cc.NewStream(ctx, &TicTacToeService_ServiceDesc.Streams[0], TicTacToeService_JoinSession_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[JoinSessionRequest, SessionState]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// TicTacToeService_JoinSessionClient is the client stream returned by JoinSession.
type TicTacToeService_JoinSessionClient = grpc.ServerStreamingClient[SessionState]

func (c *ticTacToeServiceClient) MakeMove(ctx context.Context, in *MakeMoveRequest, opts ...grpc.CallOption) (*MakeMoveResponse, error) {
	out := new(MakeMoveResponse)
	if err := c.cc.Invoke(ctx, TicTacToeService_MakeMove_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ticTacToeServiceClient) LeaveSession(ctx context.Context, in *LeaveSessionRequest, opts ...grpc.CallOption) (*LeaveSessionResponse, error) {
	out := new(LeaveSessionResponse)
	if err := c.cc.Invoke(ctx, TicTacToeService_LeaveSession_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ticTacToeServiceClient) ListResults(ctx context.Context, in *ListResultsRequest, opts ...grpc.CallOption) (*ListResultsResponse, error) {
	out := new(ListResultsResponse)
	if err := c.cc.Invoke(ctx, TicTacToeService_ListResults_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// TicTacToeServiceServer is the server API for TicTacToeService.
// All implementations must embed UnimplementedTicTacToeServiceServer.
type TicTacToeServiceServer interface {
	CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error)
	ListSessions(context.Context, *ListSessionsRequest) (*ListSessionsResponse, error)
	JoinSession(*JoinSessionRequest, grpc.ServerStreamingServer[SessionState]) error
	MakeMove(context.Context, *MakeMoveRequest) (*MakeMoveResponse, error)
	LeaveSession(context.Context, *LeaveSessionRequest) (*LeaveSessionResponse, error)
	ListResults(context.Context, *ListResultsRequest) (*ListResultsResponse, error)
	mustEmbedUnimplementedTicTacToeServiceServer()
}

// TicTacToeService_JoinSessionServer is the server side of JoinSession.
type TicTacToeService_JoinSessionServer = grpc.ServerStreamingServer[SessionState]

// UnimplementedTicTacToeServiceServer must be embedded by value for forward
// compatibility.
type UnimplementedTicTacToeServiceServer struct{}

func (UnimplementedTicTacToeServiceServer) CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateSession not implemented")
}
func (UnimplementedTicTacToeServiceServer) ListSessions(context.Context, *ListSessionsRequest) (*ListSessionsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListSessions not implemented")
}
func (UnimplementedTicTacToeServiceServer) JoinSession(*JoinSessionRequest, grpc.ServerStreamingServer[SessionState]) error {
	return status.Errorf(codes.Unimplemented, "method JoinSession not implemented")
}
func (UnimplementedTicTacToeServiceServer) MakeMove(context.Context, *MakeMoveRequest) (*MakeMoveResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method MakeMove not implemented")
}
func (UnimplementedTicTacToeServiceServer) LeaveSession(context.Context, *LeaveSessionRequest) (*LeaveSessionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method LeaveSession not implemented")
}
func (UnimplementedTicTacToeServiceServer) ListResults(context.Context, *ListResultsRequest) (*ListResultsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListResults not implemented")
}
func (UnimplementedTicTacToeServiceServer) mustEmbedUnimplementedTicTacToeServiceServer() {}

// RegisterTicTacToeServiceServer registers srv on s.
func RegisterTicTacToeServiceServer(s grpc.ServiceRegistrar, srv TicTacToeServiceServer) {
	s.RegisterService(&TicTacToeService_ServiceDesc, srv)
}

// unaryHandler adapts one typed server method to a grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(TicTacToeServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TicTacToeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TicTacToeServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func joinSessionHandler(srv any, stream grpc.ServerStream) error {
	m := new(JoinSessionRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(TicTacToeServiceServer).JoinSession(m, &grpc.GenericServerStream[JoinSessionRequest, SessionState]{ServerStream: stream})
}

// TicTacToeService_ServiceDesc is the grpc.ServiceDesc for TicTacToeService.
var TicTacToeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "tictactoe.v1.TicTacToeService",
	HandlerType: (*TicTacToeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateSession",
			Handler: unaryHandler(TicTacToeService_CreateSession_FullMethodName,
				TicTacToeServiceServer.CreateSession),
		},
		{
			MethodName: "ListSessions",
			Handler: unaryHandler(TicTacToeService_ListSessions_FullMethodName,
				TicTacToeServiceServer.ListSessions),
		},
		{
			MethodName: "MakeMove",
			Handler: unaryHandler(TicTacToeService_MakeMove_FullMethodName,
				TicTacToeServiceServer.MakeMove),
		},
		{
			MethodName: "LeaveSession",
			Handler: unaryHandler(TicTacToeService_LeaveSession_FullMethodName,
				TicTacToeServiceServer.LeaveSession),
		},
		{
			MethodName: "ListResults",
			Handler: unaryHandler(TicTacToeService_ListResults_FullMethodName,
				TicTacToeServiceServer.ListResults),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "JoinSession",
			Handler:       joinSessionHandler,
			ServerStreams: true,
		},
	},
	Metadata: "tictactoe/v1/tictactoe.proto",
}
