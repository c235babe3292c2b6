package gameserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cory-johannsen/tictactoe/internal/config"
	"github.com/cory-johannsen/tictactoe/internal/game/session"
	"github.com/cory-johannsen/tictactoe/internal/gameserver/tictacv1"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100

	moveAccepted = "Move accepted"
	moveRejected = "Invalid move"
)

var validate = validator.New()

// createSessionInput bounds display names at 64 characters.
type createSessionInput struct {
	DisplayName string `validate:"required,max=64"`
}

// SessionService implements the TicTacToeService gRPC API over a session
// Registry. It owns no game state: every call is forwarded to the registry
// and translated to wire messages and status codes.
type SessionService struct {
	tictacv1.UnimplementedTicTacToeServiceServer
	registry   *session.Registry
	results    ResultStore
	sinkBuffer int
	nameRule   string
	logger     *zap.Logger
}

// NewSessionService creates a SessionService.
//
// Precondition: registry and logger must be non-nil. results may be nil, in
// which case ListResults returns an empty list.
// Postcondition: Returns a service ready to be registered on a grpc.Server.
func NewSessionService(
	registry *session.Registry,
	results ResultStore,
	cfg config.GameServerConfig,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		registry:   registry,
		results:    results,
		sinkBuffer: cfg.SinkBuffer,
		nameRule:   fmt.Sprintf("required,max=%d", cfg.MaxNameLength),
		logger:     logger,
	}
}

// CreateSession allocates a new empty session.
func (s *SessionService) CreateSession(_ context.Context, req *tictacv1.CreateSessionRequest) (*tictacv1.CreateSessionResponse, error) {
	in := createSessionInput{DisplayName: strings.TrimSpace(req.DisplayName)}
	if err := validate.Struct(in); err != nil {
		return nil, invalidArgument("display_name", err)
	}
	id := s.registry.Create(in.DisplayName)
	return &tictacv1.CreateSessionResponse{SessionId: id}, nil
}

// ListSessions returns the sessions currently waiting for a second player.
func (s *SessionService) ListSessions(context.Context, *tictacv1.ListSessionsRequest) (*tictacv1.ListSessionsResponse, error) {
	return &tictacv1.ListSessionsResponse{Sessions: toSummaries(s.registry.List())}, nil
}

// JoinSession seats the caller and streams every snapshot of the session.
// The stream completes when the seat is removed or the session closes; a
// client that disconnects first is treated as having left.
func (s *SessionService) JoinSession(req *tictacv1.JoinSessionRequest, stream tictacv1.TicTacToeService_JoinSessionServer) error {
	name, err := s.playerName(req.PlayerName)
	if err != nil {
		return err
	}
	if req.SessionId == "" {
		return status.Error(codes.InvalidArgument, "session_id is required")
	}

	sink := session.NewChannelSink(uuid.NewString(), s.sinkBuffer)
	role, err := s.registry.Join(req.SessionId, name, sink)
	if err != nil {
		return toStatus(err)
	}
	logger := s.logger.With(
		zap.String("session_id", req.SessionId),
		zap.String("player", name),
		zap.String("sink", sink.ID()),
	)
	logger.Info("participant stream opened", zap.Stringer("role", role))
	defer func() {
		if s.registry.Detach(req.SessionId, sink.ID()) {
			logger.Info("participant disconnected")
		}
	}()

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		case snap, ok := <-sink.Events():
			if !ok {
				logger.Debug("participant stream completed")
				return nil
			}
			if err := stream.Send(toSessionState(snap)); err != nil {
				logger.Debug("forwarding snapshot failed", zap.Error(err))
				return err
			}
		}
	}
}

// MakeMove plays position for player_name. Every rejection, including an
// unknown session, is reported as accepted=false.
func (s *SessionService) MakeMove(_ context.Context, req *tictacv1.MakeMoveRequest) (*tictacv1.MakeMoveResponse, error) {
	name, err := s.playerName(req.PlayerName)
	if err != nil {
		return nil, err
	}
	if !s.registry.Move(req.SessionId, name, int(req.Position)) {
		return &tictacv1.MakeMoveResponse{Accepted: false, Message: moveRejected}, nil
	}
	return &tictacv1.MakeMoveResponse{Accepted: true, Message: moveAccepted}, nil
}

// LeaveSession removes player_name from the session.
func (s *SessionService) LeaveSession(_ context.Context, req *tictacv1.LeaveSessionRequest) (*tictacv1.LeaveSessionResponse, error) {
	name, err := s.playerName(req.PlayerName)
	if err != nil {
		return nil, err
	}
	return &tictacv1.LeaveSessionResponse{Left: s.registry.Leave(req.SessionId, name)}, nil
}

// ListResults returns the most recently concluded matches.
func (s *SessionService) ListResults(ctx context.Context, req *tictacv1.ListResultsRequest) (*tictacv1.ListResultsResponse, error) {
	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}
	if s.results == nil {
		return &tictacv1.ListResultsResponse{Results: []*tictacv1.MatchResult{}}, nil
	}
	limit := lo.Clamp(int(req.Limit), 1, maxResultsLimit)
	if req.Limit == 0 {
		limit = defaultResultsLimit
	}
	results, err := s.results.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("loading match results", zap.Error(err))
		return nil, status.Error(codes.Unavailable, "match results unavailable")
	}
	return &tictacv1.ListResultsResponse{Results: toMatchResults(results)}, nil
}

func (s *SessionService) playerName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if err := validate.Var(name, s.nameRule); err != nil {
		return "", invalidArgument("player_name", err)
	}
	return name, nil
}

// invalidArgument converts a validator failure into an InvalidArgument status.
func invalidArgument(field string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return status.Errorf(codes.InvalidArgument, "%s: %v", field, err)
	}
	rules := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		return fe.Tag()
	})
	return status.Errorf(codes.InvalidArgument, "%s violates %s", field, strings.Join(rules, ", "))
}

// toStatus maps session errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, session.ErrSessionFull), errors.Is(err, session.ErrNameTaken):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrSinkFailed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
