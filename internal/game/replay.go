package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const replayVersion = 1

// Replay is the ordered list of snapshots a session went through.
type Replay struct {
	SessionID    string
	States       []Snapshot
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay.
func NewReplay(sessionID string) *Replay {
	return &Replay{
		SessionID: sessionID,
		States:    make([]Snapshot, 0),
	}
}

// RecordState appends a snapshot.
func (r *Replay) RecordState(snapshot Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.States = append(r.States, snapshot)
}

// Start rewinds to the first state.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the state at the cursor and advances it.
func (r *Replay) Next() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.States) {
		state := r.States[r.CurrentIndex]
		r.CurrentIndex++
		return state, true
	}
	return Snapshot{}, false
}

// Previous moves the cursor back and returns the state there.
func (r *Replay) Previous() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.States[r.CurrentIndex], true
	}
	return Snapshot{}, false
}

// Skip moves the cursor by count, clamped to the recorded range.
func (r *Replay) Skip(count int) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.States) == 0 {
		return Snapshot{}, false
	}

	idx := r.CurrentIndex + count
	if idx >= len(r.States) {
		idx = len(r.States) - 1
	}
	if idx < 0 {
		idx = 0
	}

	r.CurrentIndex = idx
	return r.States[idx], true
}

// Size returns the number of recorded states.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.States)
}

// GetStateAt returns the state at index.
func (r *Replay) GetStateAt(index int) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.States) {
		return r.States[index], true
	}
	return Snapshot{}, false
}

// Last returns the most recent state.
func (r *Replay) Last() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.States) == 0 {
		return Snapshot{}, false
	}
	return r.States[len(r.States)-1], true
}

func replayPath(directory, sessionID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.replay", sessionID))
}

// SaveToFile writes the replay to <directory>/<session>.replay as gzipped gob.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(replayPath(directory, r.SessionID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gz)

	metadata := replayMetadata{
		SessionID:  r.SessionID,
		Timestamp:  time.Now(),
		Version:    replayVersion,
		StateCount: len(r.States),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	for i, state := range r.States {
		if err := encoder.Encode(state); err != nil {
			return fmt.Errorf("failed to encode state %d: %w", i, err)
		}
	}

	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}

	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, sessionID string) (*Replay, error) {
	file, err := os.Open(replayPath(directory, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	decoder := gob.NewDecoder(gz)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.SessionID)
	for i := 0; i < metadata.StateCount; i++ {
		var state Snapshot
		if err := decoder.Decode(&state); err != nil {
			return nil, fmt.Errorf("failed to decode state %d: %w", i, err)
		}
		replay.States = append(replay.States, state)
	}

	return replay, nil
}

type replayMetadata struct {
	SessionID  string
	Timestamp  time.Time
	Version    int
	StateCount int
}

// ReplayRecorder keeps one replay per recorded session.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	enabled map[string]bool
	saveDir string
}

// NewReplayRecorder creates a recorder that saves into saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
		saveDir: saveDir,
	}
}

// StartRecording begins a fresh replay for sessionID.
func (rr *ReplayRecorder) StartRecording(sessionID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[sessionID] = NewReplay(sessionID)
	rr.enabled[sessionID] = true

	if rr.logger != nil {
		rr.logger.Info("started replay recording", zap.String("session_id", sessionID))
	}
}

// StopRecording stops appending to a session's replay but keeps it in memory.
func (rr *ReplayRecorder) StopRecording(sessionID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[sessionID] = false

	if rr.logger != nil {
		rr.logger.Info("stopped replay recording", zap.String("session_id", sessionID))
	}
}

// RecordState appends snapshot if recording is enabled for its session.
func (rr *ReplayRecorder) RecordState(snapshot Snapshot) {
	rr.mu.RLock()
	enabled := rr.enabled[snapshot.SessionID]
	replay := rr.replays[snapshot.SessionID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}

	replay.RecordState(snapshot)

	if rr.logger != nil {
		rr.logger.Debug("recorded replay state",
			zap.String("session_id", snapshot.SessionID),
			zap.Int("state_count", replay.Size()),
		)
	}
}

// GetReplay returns the in-memory replay for a session.
func (rr *ReplayRecorder) GetReplay(sessionID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[sessionID]
	return replay, exists
}

// SaveReplay writes a session's replay to disk and drops it from memory.
func (rr *ReplayRecorder) SaveReplay(sessionID string) error {
	rr.mu.Lock()
	replay, exists := rr.replays[sessionID]
	if !exists {
		rr.mu.Unlock()
		return fmt.Errorf("no replay found for session %s", sessionID)
	}
	delete(rr.replays, sessionID)
	delete(rr.enabled, sessionID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}

	if rr.logger != nil {
		rr.logger.Info("saved replay to disk",
			zap.String("session_id", sessionID),
			zap.Int("state_count", replay.Size()),
			zap.String("directory", rr.saveDir),
		)
	}

	return nil
}

// LoadReplay reads a saved replay from the recorder's directory.
func (rr *ReplayRecorder) LoadReplay(sessionID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, sessionID)
	if err != nil {
		return nil, err
	}

	if rr.logger != nil {
		rr.logger.Info("loaded replay from disk",
			zap.String("session_id", sessionID),
			zap.Int("state_count", replay.Size()),
		)
	}

	return replay, nil
}

// ClearReplay discards a session's replay without saving it.
func (rr *ReplayRecorder) ClearReplay(sessionID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, sessionID)
	delete(rr.enabled, sessionID)
}

// IsRecording reports whether snapshots for sessionID are being kept.
func (rr *ReplayRecorder) IsRecording(sessionID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[sessionID]
}
