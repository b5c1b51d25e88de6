// Package game runs SWCCG matches: one Resolver per match drives costs,
// effects, timing windows and decisions on a single timeline, and the
// Engine hosts many matches side by side.
package game

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/game/catalog"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/history"
)

// Notification types emitted by the engine.
const (
	NotificationUpdated  = "MATCH_UPDATED"
	NotificationDecision = "DECISION_PENDING"
	NotificationEnded    = "MATCH_ENDED"
)

// Notification tells listeners that a match moved. Views are fetched separately.
type Notification struct {
	Type      string
	MatchID   string
	PlayerID  string // Empty for broadcasts
	Seq       int64
	Timestamp time.Time
	Data      map[string]interface{}
}

// NotificationHandler receives notifications on its own goroutine.
type NotificationHandler func(Notification)

// Options configures an Engine.
type Options struct {
	Logger        *zap.Logger
	Catalog       *catalog.Catalog
	Sink          history.Sink // Optional
	RecordingsDir string       // Empty disables recordings
	MaxDepth      int
}

// Engine hosts every running match. Matches are independent: each one is
// serialised by its own resolver lock.
type Engine struct {
	logger        *zap.Logger
	catalog       *catalog.Catalog
	sink          history.Sink
	recordingsDir string
	maxDepth      int

	mu                  sync.RWMutex
	matches             map[string]*Resolver
	notificationHandler NotificationHandler
}

// NewEngine creates an engine sharing one read-only catalog across matches.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.New()
	}
	return &Engine{
		logger:        logger,
		catalog:       cat,
		sink:          opts.Sink,
		recordingsDir: opts.RecordingsDir,
		maxDepth:      opts.MaxDepth,
		matches:       make(map[string]*Resolver),
	}
}

// SetNotificationHandler sets the handler for match notifications.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

// emitNotification hands the notification to the handler without blocking
// the caller, which may hold a match lock.
func (e *Engine) emitNotification(n Notification) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()

	if handler != nil {
		go handler(n)
	}
}

func (e *Engine) match(matchID string) (*Resolver, error) {
	e.mu.RLock()
	r, ok := e.matches[matchID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("match %s: %w", matchID, rules.ErrMatchNotFound)
	}
	return r, nil
}

// StartMatch creates a match and runs it to its first settled point.
func (e *Engine) StartMatch(ctx context.Context, setup MatchSetup) (Result, error) {
	if setup.MatchID != "" {
		if _, err := e.match(setup.MatchID); err == nil {
			return Result{}, fmt.Errorf("match %s already exists: %w", setup.MatchID, ErrInvalidSetup)
		}
	}
	r, err := newResolver(setup, e.catalog, e.logger, e.maxDepth)
	if err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	if _, exists := e.matches[r.id]; exists {
		e.mu.Unlock()
		return Result{}, fmt.Errorf("match %s already exists: %w", r.id, ErrInvalidSetup)
	}
	e.matches[r.id] = r
	e.mu.Unlock()

	r.mu.Lock()
	res := r.result(0)
	r.mu.Unlock()

	e.afterCommand(ctx, r, res)
	return res, nil
}

// ApplyCommand runs one player command against a match.
func (e *Engine) ApplyCommand(ctx context.Context, matchID string, cmd Command) (Result, error) {
	r, err := e.match(matchID)
	if err != nil {
		return Result{}, err
	}
	res, err := r.Apply(cmd)
	if err != nil {
		return Result{}, err
	}
	e.afterCommand(ctx, r, res)
	return res, nil
}

// CancelMatch forces a match into its terminal state.
func (e *Engine) CancelMatch(ctx context.Context, matchID, reason string) (Result, error) {
	r, err := e.match(matchID)
	if err != nil {
		return Result{}, err
	}
	res := r.Cancel(reason)
	e.afterCommand(ctx, r, res)
	return res, nil
}

// CurrentView returns the match as the viewer sees it.
func (e *Engine) CurrentView(matchID, viewer string) (View, error) {
	r, err := e.match(matchID)
	if err != nil {
		return View{}, err
	}
	return r.View(viewer), nil
}

// Checksum returns the state hash of a match.
func (e *Engine) Checksum(matchID string) (string, error) {
	r, err := e.match(matchID)
	if err != nil {
		return "", err
	}
	return r.Checksum(), nil
}

// History returns every log entry of a match.
func (e *Engine) History(matchID string) ([]rules.Event, error) {
	r, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.All(), nil
}

// MatchIDs lists the hosted matches in sorted order.
func (e *Engine) MatchIDs() []string {
	e.mu.RLock()
	ids := make([]string, 0, len(e.matches))
	for id := range e.matches {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// RemoveMatch forgets a finished match.
func (e *Engine) RemoveMatch(matchID string) error {
	r, err := e.match(matchID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	ended := r.state.Ended()
	r.mu.Unlock()
	if !ended {
		return fmt.Errorf("match %s is still running: %w", matchID, rules.ErrIllegalAction)
	}
	e.mu.Lock()
	delete(e.matches, matchID)
	e.mu.Unlock()
	return nil
}

// afterCommand reports the settled point: notifications always, the history
// summary and recording once the match has ended. No match lock is held.
func (e *Engine) afterCommand(ctx context.Context, r *Resolver, res Result) {
	e.emitNotification(Notification{
		Type:      NotificationUpdated,
		MatchID:   res.MatchID,
		Seq:       res.Seq,
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"status": string(res.Status), "events": len(res.Events)},
	})
	if res.Pending != nil {
		e.emitNotification(Notification{
			Type:      NotificationDecision,
			MatchID:   res.MatchID,
			PlayerID:  res.Pending.PlayerID,
			Seq:       res.Seq,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"request_id": res.Pending.ID, "kind": string(res.Pending.Kind)},
		})
	}

	r.mu.Lock()
	summary := r.takeSummary()
	var rec *Recording
	if summary != nil && e.recordingsDir != "" {
		rec = r.recording()
	}
	r.mu.Unlock()
	if summary == nil {
		return
	}

	if e.sink != nil {
		if err := e.sink.RecordMatch(ctx, *summary); err != nil {
			e.logger.Error("failed to record match history",
				zap.String("match_id", summary.MatchID),
				zap.Error(err),
			)
		}
	}
	if rec != nil {
		if err := SaveRecording(e.recordingsDir, rec); err != nil {
			e.logger.Error("failed to save recording",
				zap.String("match_id", rec.MatchID),
				zap.Error(err),
			)
		}
	}
	e.emitNotification(Notification{
		Type:      NotificationEnded,
		MatchID:   summary.MatchID,
		PlayerID:  summary.Winner,
		Seq:       res.Seq,
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"reason": summary.Reason, "draw": summary.Draw, "fault": summary.Fault},
	})
}
