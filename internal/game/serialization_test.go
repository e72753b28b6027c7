package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSnapshot(t *testing.T) Snapshot {
	t.Helper()
	m := initializedMatch(t)
	_, err := m.Draw()
	require.NoError(t, err)
	_, _, err = m.ChannelRunes(3)
	require.NoError(t, err)
	snap, err := m.ExhaustToggle(1)
	require.NoError(t, err)
	return snap
}

func TestComputeChecksum(t *testing.T) {
	checksum, err := createTestSnapshot(t).ComputeChecksum()
	require.NoError(t, err)
	assert.Len(t, checksum.Hash, 64)
	assert.Equal(t, 1, checksum.Version)
	assert.NotEmpty(t, checksum.Timestamp)
}

// Two independently built matches in the same state hash the same even
// though their rune tokens and timestamps differ.
func TestChecksumIgnoresTokensAndTimestamp(t *testing.T) {
	a := createTestSnapshot(t)
	b := createTestSnapshot(t)
	require.NotEqual(t, a.RuneField[0].Token, b.RuneField[0].Token)
	b.Timestamp = a.Timestamp.Add(time.Hour)

	ca, err := a.ComputeChecksum()
	require.NoError(t, err)
	cb, err := b.ComputeChecksum()
	require.NoError(t, err)
	assert.Equal(t, ca.Hash, cb.Hash)
}

func TestChecksumDetectsChanges(t *testing.T) {
	base := createTestSnapshot(t)
	original, err := base.ComputeChecksum()
	require.NoError(t, err)

	mutations := map[string]func(s *Snapshot){
		"library order": func(s *Snapshot) {
			s.Library = cloneSlice(s.Library)
			s.Library[0], s.Library[1] = s.Library[1], s.Library[0]
		},
		"exhausted flag": func(s *Snapshot) {
			s.RuneField = cloneSlice(s.RuneField)
			s.RuneField[0].Exhausted = !s.RuneField[0].Exhausted
		},
		"legend": func(s *Snapshot) { s.Legend.Exhausted = true },
		"champion": func(s *Snapshot) { s.Champion = "" },
		"discard": func(s *Snapshot) { s.Discard = append(cloneSlice(s.Discard), "C-99") },
		"sequence": func(s *Snapshot) { s.Sequence++ },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			changed := base
			mutate(&changed)
			checksum, err := changed.ComputeChecksum()
			require.NoError(t, err)
			assert.NotEqual(t, original.Hash, checksum.Hash)
		})
	}
}

func TestSerializeDeserialize(t *testing.T) {
	snap := createTestSnapshot(t)

	data, err := snap.SerializeToBytes()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := DeserializeFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, snap.Library, decoded.Library)
	assert.Equal(t, snap.RuneField, decoded.RuneField)
	assert.Equal(t, snap.ExhaustedRunes, decoded.ExhaustedRunes)
	assert.Equal(t, snap.Legend, decoded.Legend)
	assert.True(t, snap.Timestamp.Equal(decoded.Timestamp))

	require.NoError(t, ValidateSerializationRoundtrip(snap))
}

func TestDeserializeGarbage(t *testing.T) {
	_, err := DeserializeFromBytes([]byte("not gob"))
	assert.Error(t, err)
}

func TestVerifyChecksum(t *testing.T) {
	snap := createTestSnapshot(t)
	checksum, err := snap.ComputeChecksum()
	require.NoError(t, err)

	ok, err := snap.VerifyChecksum(checksum)
	require.NoError(t, err)
	assert.True(t, ok)

	snap.Champion = "CHA-2"
	ok, err = snap.VerifyChecksum(checksum)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = snap.VerifyChecksum(nil)
	assert.Error(t, err)
}

func TestChecksumWithEmptySnapshot(t *testing.T) {
	checksum, err := Snapshot{}.ComputeChecksum()
	require.NoError(t, err)
	assert.NotEmpty(t, checksum.Hash)
}
