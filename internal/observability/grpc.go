package observability

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryServerLogger logs one entry per unary call with its method, status
// code and duration. Server-side failures log at warn; client errors at info.
func UnaryServerLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(logger, "unary call", info.FullMethod, start, err)
		return resp, err
	}
}

// StreamServerLogger logs stream open and completion.
func StreamServerLogger(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		logger.Debug("stream opened", zap.String("method", info.FullMethod))
		err := handler(srv, ss)
		logCall(logger, "stream closed", info.FullMethod, start, err)
		return err
	}
}

func logCall(logger *zap.Logger, msg, method string, start time.Time, err error) {
	code := status.Code(err)
	fields := []zap.Field{
		zap.String("method", method),
		zap.Stringer("code", code),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Check(levelFor(code), msg).Write(fields...)
}

func levelFor(code codes.Code) zapcore.Level {
	switch code {
	case codes.OK, codes.Canceled:
		return zapcore.DebugLevel
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition, codes.AlreadyExists:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}
