package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

const recordingVersion = 1

// Recording is the archived event log of a finished match, with the seed
// needed to reproduce its random draws.
type Recording struct {
	Version    int
	MatchID    string
	Seed       uint64
	Outcome    state.Outcome
	RecordedAt time.Time
	Events     []rules.Event
}

func recordingPath(dir, matchID string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.recording", matchID))
}

// SaveRecording writes the recording as gzip-compressed gob to <dir>/<match>.recording.
func SaveRecording(dir string, rec *Recording) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(recordingPath(dir, rec.MatchID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gzipWriter)
	if err := encoder.Encode(rec); err != nil {
		_ = gzipWriter.Close()
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush recording: %w", err)
	}
	return nil
}

// LoadRecording reads a recording written by SaveRecording.
func LoadRecording(dir, matchID string) (*Recording, error) {
	file, err := os.Open(recordingPath(dir, matchID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	var rec Recording
	if err := gob.NewDecoder(gzipReader).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode recording: %w", err)
	}
	if rec.Version != recordingVersion {
		return nil, fmt.Errorf("unsupported recording version: %d", rec.Version)
	}
	return &rec, nil
}

// recording snapshots the finished match.
func (r *Resolver) recording() *Recording {
	return &Recording{
		Version:    recordingVersion,
		MatchID:    r.id,
		Seed:       r.seed,
		Outcome:    r.state.Outcome,
		RecordedAt: time.Now().UTC(),
		Events:     r.log.All(),
	}
}
