package server

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gempswccg/swccg-server/internal/config"
	"github.com/gempswccg/swccg-server/internal/game"
	"github.com/gempswccg/swccg-server/internal/game/cards"
	"github.com/gempswccg/swccg-server/internal/game/catalog"
	"github.com/gempswccg/swccg-server/internal/game/state"
	"github.com/gempswccg/swccg-server/internal/history"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cards.Register(cat))
	require.NoError(t, cat.AddDefinition(&state.Definition{
		ID: "220_10", Title: cards.TitleThrownBack, Side: "Light", Type: "Effect", Abilities: []string{cards.KeyThrownBack},
	}))
	require.NoError(t, cat.AddDefinition(&state.Definition{
		ID: "6_149", Title: cards.TitleMonnok, Side: "Dark", Type: "Interrupt", Abilities: []string{cards.KeyMonnok},
	}))
	for i := 0; i < 10; i++ {
		require.NoError(t, cat.AddDefinition(&state.Definition{
			ID: fmt.Sprintf("card-%02d", i), Title: fmt.Sprintf("Card %02d", i), Side: "Light", Type: "Character",
		}))
	}
	return cat
}

func newTestEngine(t *testing.T) (*game.Engine, *history.MemoryStore) {
	t.Helper()
	sink := history.NewMemoryStore()
	return game.NewEngine(game.Options{Logger: zaptest.NewLogger(t), Catalog: testCatalog(t), Sink: sink}), sink
}

// rulesClient calls the service over an in-memory connection.
type rulesClient struct {
	conn *grpc.ClientConn
}

func (c *rulesClient) call(t *testing.T, method string, body map[string]any) (map[string]any, error) {
	t.Helper()
	in, err := structpb.NewStruct(body)
	require.NoError(t, err)
	out := &structpb.Struct{}
	if err := c.conn.Invoke(context.Background(), "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func startRulesServer(t *testing.T) (*rulesClient, *game.Engine) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	engine, sink := newTestEngine(t)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(ChainUnaryInterceptors(
		RecoveryInterceptor(logger),
		LoggingInterceptor(logger),
	)))
	RegisterRulesServer(srv, NewRulesServer(engine, sink, config.RulesConfig{ActivationBase: 1, Seed: 99}, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &rulesClient{conn: conn}, engine
}

func startBody(matchID string) map[string]any {
	return map[string]any{
		"match_id": matchID,
		"format":   "Open",
		"players": []any{
			map[string]any{
				"player_id": "luke",
				"deck_name": "Shields",
				"force":     5,
				"cards":     []any{map[string]any{"id": "shield", "definition": "220_10", "zone": "TABLE"}},
			},
			map[string]any{
				"player_id": "vader",
				"force":     5,
				"cards": []any{
					map[string]any{"id": "monnok", "definition": "6_149", "zone": "HAND"},
					map[string]any{"definition": "card-01"},
				},
			},
		},
	}
}

func TestStartMatchAndView(t *testing.T) {
	client, _ := startRulesServer(t)

	res, err := client.call(t, "StartMatch", startBody("g1"))
	require.NoError(t, err)
	assert.Equal(t, "g1", res["match_id"])
	assert.Equal(t, "APPLIED", res["status"])

	view, err := client.call(t, "CurrentView", map[string]any{"match_id": "g1", "viewer": "vader"})
	require.NoError(t, err)
	assert.Equal(t, "luke", view["active_player"])
	legal, ok := view["legal_actions"].([]any)
	require.True(t, ok)
	require.Len(t, legal, 1)
	assert.Equal(t, "monnok", legal[0].(map[string]any)["source_id"])
}

func TestApplyCommandErrorCodes(t *testing.T) {
	client, _ := startRulesServer(t)
	_, err := client.call(t, "StartMatch", startBody("g1"))
	require.NoError(t, err)

	tests := []struct {
		name string
		body map[string]any
		code codes.Code
	}{
		{"unknown match", map[string]any{"match_id": "nope", "kind": "PASS", "player_id": "luke"}, codes.NotFound},
		{"missing match", map[string]any{"kind": "PASS", "player_id": "luke"}, codes.InvalidArgument},
		{"not active", map[string]any{"match_id": "g1", "kind": "PASS", "player_id": "vader"}, codes.FailedPrecondition},
		{"nothing pending", map[string]any{"match_id": "g1", "kind": "RESPOND", "player_id": "luke", "seq": 2}, codes.FailedPrecondition},
		{"stale", map[string]any{"match_id": "g1", "kind": "RESPOND", "player_id": "luke", "seq": 1}, codes.Aborted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.call(t, "ApplyCommand", tt.body)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestBadSetupIsInvalidArgument(t *testing.T) {
	client, _ := startRulesServer(t)
	_, err := client.call(t, "StartMatch", map[string]any{"players": []any{map[string]any{"player_id": "solo"}}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestConcedeThenStatsAndHistory(t *testing.T) {
	client, _ := startRulesServer(t)
	_, err := client.call(t, "StartMatch", startBody("g1"))
	require.NoError(t, err)

	res, err := client.call(t, "ApplyCommand", map[string]any{"match_id": "g1", "kind": "CONCEDE", "player_id": "vader"})
	require.NoError(t, err)
	assert.Equal(t, "ENDED", res["status"])

	stats, err := client.call(t, "PlayerStats", map[string]any{"player_id": "luke"})
	require.NoError(t, err)
	casual, ok := stats["casual"].([]any)
	require.True(t, ok)
	require.Len(t, casual, 1)
	deck := casual[0].(map[string]any)
	assert.Equal(t, "Shields", deck["deck_name"])
	assert.Equal(t, float64(1), deck["wins"])
	assert.Equal(t, float64(1), deck["perc"])

	hist, err := client.call(t, "MatchHistory", map[string]any{"match_id": "g1", "since": 2})
	require.NoError(t, err)
	events, ok := hist["events"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, events)
	last := events[len(events)-1].(map[string]any)
	assert.Equal(t, "MATCH_ENDED", last["type"])

	_, err = client.call(t, "ApplyCommand", map[string]any{"match_id": "g1", "kind": "PASS", "player_id": "luke"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestCancelMatch(t *testing.T) {
	client, engine := startRulesServer(t)
	_, err := client.call(t, "StartMatch", startBody("g1"))
	require.NoError(t, err)

	res, err := client.call(t, "CancelMatch", map[string]any{"match_id": "g1"})
	require.NoError(t, err)
	assert.Equal(t, "ENDED", res["status"])

	v, err := engine.CurrentView("g1", "luke")
	require.NoError(t, err)
	assert.Equal(t, "cancelled: cancelled by request", v.Outcome.Reason)
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zaptest.NewLogger(t))
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/test"},
		func(context.Context, interface{}) (interface{}, error) { panic("boom") })
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			order = append(order, name)
			return handler(ctx, req)
		}
	}
	chain := ChainUnaryInterceptors(mark("outer"), mark("inner"))
	_, err := chain(context.Background(), nil, &grpc.UnaryServerInfo{}, func(context.Context, interface{}) (interface{}, error) {
		order = append(order, "handler")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
