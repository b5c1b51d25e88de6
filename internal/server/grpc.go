// Package server exposes the rules engine over gRPC and pushes match views
// to WebSocket subscribers.
package server

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gempswccg/swccg-server/internal/config"
	"github.com/gempswccg/swccg-server/internal/game"
	"github.com/gempswccg/swccg-server/internal/history"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "swccg.rules.v1.Rules"

// RulesServer is the gRPC surface of the rules engine. Every message is a
// google.protobuf.Struct carrying the JSON shapes in wire.go.
type RulesServer interface {
	StartMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApplyCommand(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CurrentView(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MatchHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PlayerStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryMethod(name string, call func(RulesServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RulesServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(RulesServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// RulesServiceDesc describes the service for grpc.Server.RegisterService.
var RulesServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RulesServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("StartMatch", RulesServer.StartMatch),
		unaryMethod("ApplyCommand", RulesServer.ApplyCommand),
		unaryMethod("CurrentView", RulesServer.CurrentView),
		unaryMethod("CancelMatch", RulesServer.CancelMatch),
		unaryMethod("MatchHistory", RulesServer.MatchHistory),
		unaryMethod("PlayerStats", RulesServer.PlayerStats),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "swccg/rules/v1/rules.proto",
}

// RegisterRulesServer registers the service with a gRPC server.
func RegisterRulesServer(s grpc.ServiceRegistrar, srv RulesServer) {
	s.RegisterService(&RulesServiceDesc, srv)
}

// rulesServer implements RulesServer over the engine.
type rulesServer struct {
	engine *game.Engine
	stats  history.Store
	rules  config.RulesConfig
	logger *zap.Logger
}

// NewRulesServer creates the service. stats may be nil when no history store is configured.
func NewRulesServer(engine *game.Engine, stats history.Store, rules config.RulesConfig, logger *zap.Logger) RulesServer {
	return &rulesServer{
		engine: engine,
		stats:  stats,
		rules:  rules,
		logger: logger,
	}
}

// StartMatch creates a match from the posted setup.
func (s *rulesServer) StartMatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req startMatchRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	res, err := s.engine.StartMatch(ctx, req.setup(s.rules.ActivationBase, s.rules.Seed))
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info("match created",
		zap.String("match_id", res.MatchID),
		zap.String("format", req.Format),
		zap.Int("players", len(req.Players)),
	)
	return respond(resultFrom(res))
}

// ApplyCommand runs one player command.
func (s *rulesServer) ApplyCommand(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req commandRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if strings.TrimSpace(req.MatchID) == "" {
		return nil, toStatus(missing("match_id"))
	}
	res, err := s.engine.ApplyCommand(ctx, req.MatchID, req.command())
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(resultFrom(res))
}

// CurrentView returns the match as one player sees it.
func (s *rulesServer) CurrentView(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req viewRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	v, err := s.engine.CurrentView(req.MatchID, req.Viewer)
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(viewFrom(v))
}

// CancelMatch ends a match without a winner.
func (s *rulesServer) CancelMatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req cancelRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	reason := req.Reason
	if reason == "" {
		reason = "cancelled by request"
	}
	res, err := s.engine.CancelMatch(ctx, req.MatchID, reason)
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(resultFrom(res))
}

// MatchHistory returns the log entries after a sequence number.
func (s *rulesServer) MatchHistory(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req historyRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	entries, err := s.engine.History(req.MatchID)
	if err != nil {
		return nil, toStatus(err)
	}
	after := entries[:0:0]
	for _, e := range entries {
		if e.Seq > req.Since {
			after = append(after, e)
		}
	}
	return respond(map[string]any{"match_id": req.MatchID, "events": eventsFrom(after)})
}

// PlayerStats returns casual and competitive win/loss records per deck.
func (s *rulesServer) PlayerStats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req statsRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		return nil, toStatus(missing("player_id"))
	}
	if s.stats == nil {
		return nil, toStatus(errNoHistory)
	}
	stats, err := s.stats.PlayerStats(ctx, req.PlayerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(statsFrom(stats))
}

func respond(v any) (*structpb.Struct, error) {
	out, err := encode(v)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}
