package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func sequencedReplay(sessionID string, n int) *Replay {
	replay := NewReplay(sessionID)
	for i := 0; i < n; i++ {
		replay.RecordState(Snapshot{SessionID: sessionID, Sequence: i + 1})
	}
	return replay
}

func TestNewReplay(t *testing.T) {
	replay := NewReplay("session-123")
	assert.Equal(t, "session-123", replay.SessionID)
	assert.Equal(t, 0, replay.CurrentIndex)
	assert.Equal(t, 0, replay.Size())

	_, ok := replay.Last()
	assert.False(t, ok)
	_, ok = replay.Skip(1)
	assert.False(t, ok)
}

func TestReplayNavigation(t *testing.T) {
	replay := sequencedReplay("session-123", 5)
	replay.Start()

	state, ok := replay.Next()
	require.True(t, ok)
	assert.Equal(t, 1, state.Sequence)

	state, ok = replay.Next()
	require.True(t, ok)
	assert.Equal(t, 2, state.Sequence)
	assert.Equal(t, 2, replay.CurrentIndex)

	// previous steps back onto the state Next just returned
	state, ok = replay.Previous()
	require.True(t, ok)
	assert.Equal(t, 2, state.Sequence)

	state, ok = replay.Previous()
	require.True(t, ok)
	assert.Equal(t, 1, state.Sequence)

	_, ok = replay.Previous()
	assert.False(t, ok)

	for i := 0; i < 5; i++ {
		_, ok = replay.Next()
		require.True(t, ok)
	}
	_, ok = replay.Next()
	assert.False(t, ok)

	last, ok := replay.Last()
	require.True(t, ok)
	assert.Equal(t, 5, last.Sequence)
}

func TestReplaySkip(t *testing.T) {
	replay := sequencedReplay("session-123", 10)

	state, _ := replay.Skip(3)
	assert.Equal(t, 4, state.Sequence)

	state, _ = replay.Skip(100)
	assert.Equal(t, 10, state.Sequence)
	assert.Equal(t, 9, replay.CurrentIndex)

	state, _ = replay.Skip(-5)
	assert.Equal(t, 5, state.Sequence)

	state, _ = replay.Skip(-100)
	assert.Equal(t, 1, state.Sequence)
	assert.Equal(t, 0, replay.CurrentIndex)
}

func TestReplayGetStateAt(t *testing.T) {
	replay := sequencedReplay("session-123", 3)

	state, ok := replay.GetStateAt(2)
	require.True(t, ok)
	assert.Equal(t, 3, state.Sequence)

	_, ok = replay.GetStateAt(3)
	assert.False(t, ok)
	_, ok = replay.GetStateAt(-1)
	assert.False(t, ok)
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	replay := NewReplay("session-123")
	replay.RecordState(createTestSnapshot(t))
	replay.RecordState(createTestSnapshot(t))

	require.NoError(t, replay.SaveToFile(dir))
	_, err := os.Stat(filepath.Join(dir, "session-123.replay"))
	require.NoError(t, err)

	loaded, err := LoadReplayFromFile(dir, "session-123")
	require.NoError(t, err)
	assert.Equal(t, "session-123", loaded.SessionID)
	require.Equal(t, 2, loaded.Size())

	for i := 0; i < 2; i++ {
		want, _ := replay.GetStateAt(i)
		got, _ := loaded.GetStateAt(i)
		wantSum, err := want.ComputeChecksum()
		require.NoError(t, err)
		ok, err := got.VerifyChecksum(wantSum)
		require.NoError(t, err)
		assert.True(t, ok, "state %d", i)
	}
}

func TestReplaySaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "replays")
	require.NoError(t, sequencedReplay("s", 1).SaveToFile(dir))

	_, err := os.Stat(filepath.Join(dir, "s.replay"))
	assert.NoError(t, err)
}

func TestReplayLoadNonexistentFile(t *testing.T) {
	_, err := LoadReplayFromFile(t.TempDir(), "missing")
	assert.Error(t, err)
}

func TestReplayRecorder(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)
	sessionID := "session-123"

	recorder.StartRecording(sessionID)
	assert.True(t, recorder.IsRecording(sessionID))

	for i := 0; i < 5; i++ {
		recorder.RecordState(Snapshot{SessionID: sessionID, Sequence: i + 1})
	}
	// snapshots of other sessions are ignored
	recorder.RecordState(Snapshot{SessionID: "other", Sequence: 1})

	replay, exists := recorder.GetReplay(sessionID)
	require.True(t, exists)
	assert.Equal(t, 5, replay.Size())

	recorder.StopRecording(sessionID)
	assert.False(t, recorder.IsRecording(sessionID))
	recorder.RecordState(Snapshot{SessionID: sessionID, Sequence: 6})
	assert.Equal(t, 5, replay.Size())

	require.NoError(t, recorder.SaveReplay(sessionID))
	_, exists = recorder.GetReplay(sessionID)
	assert.False(t, exists)

	loaded, err := recorder.LoadReplay(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Size())

	assert.Error(t, recorder.SaveReplay(sessionID))
}

func TestReplayRecorderClear(t *testing.T) {
	recorder := NewReplayRecorder(zap.NewNop(), t.TempDir())
	recorder.StartRecording("s")
	recorder.RecordState(Snapshot{SessionID: "s"})

	recorder.ClearReplay("s")
	_, exists := recorder.GetReplay("s")
	assert.False(t, exists)
	assert.False(t, recorder.IsRecording("s"))
}
