package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/silentapi/riftbounddecks/internal/catalog"
)

// checksumVersion is bumped whenever the canonical layout changes.
const checksumVersion = 1

// SerializationChecksum is a deterministic fingerprint of a snapshot.
// Two snapshots with identical zones in identical order hash the same,
// regardless of when they were taken or which rune instances they hold.
type SerializationChecksum struct {
	Hash      string // SHA-256 of the canonical representation
	Timestamp string // when the snapshot was taken, for display only
	Version   int
}

// ComputeChecksum hashes the canonical representation of the snapshot.
func (s Snapshot) ComputeChecksum() (*SerializationChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(s.canonical())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	return &SerializationChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: s.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   checksumVersion,
	}, nil
}

// VerifyChecksum reports whether the snapshot still hashes to expected.
func (s Snapshot) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	if expected == nil {
		return false, fmt.Errorf("no checksum to verify against")
	}
	computed, err := s.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}

	return computed.Hash == expected.Hash, nil
}

// canonical writes zones in play order. Order is significant for every list
// zone, so nothing is sorted. Timestamps and rune tokens are left out.
func (s Snapshot) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "SESSION:%s|%d\n", s.SessionID, s.Sequence)
	writeZone(&buf, ZoneLibrary, s.Library)
	writeZone(&buf, ZoneHand, s.Hand)
	writeZone(&buf, ZoneDiscard, s.Discard)
	writeZone(&buf, ZoneRuneLibrary, s.RuneLibrary)

	field := make([]string, len(s.RuneField))
	for i, r := range s.RuneField {
		field[i] = fmt.Sprintf("%s:%t", r.ID, r.Exhausted)
	}
	fmt.Fprintf(&buf, "%s:%s\n", ZoneRuneField, strings.Join(field, ","))

	fmt.Fprintf(&buf, "%s:%s|%t\n", ZoneLegend, s.Legend.ID, s.Legend.Exhausted)
	fmt.Fprintf(&buf, "%s:%s\n", ZoneChampion, s.Champion)

	return buf.String()
}

func writeZone(buf *bytes.Buffer, zone Zone, ids []catalog.CardID) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	fmt.Fprintf(buf, "%s:%s\n", zone, strings.Join(parts, ","))
}

// SerializeToBytes gob-encodes the snapshot. Replay files use the same encoding.
func (s Snapshot) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a snapshot produced by SerializeToBytes.
func DeserializeFromBytes(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return s, nil
}

// ValidateSerializationRoundtrip encodes and decodes a snapshot and compares
// checksums of both sides.
func ValidateSerializationRoundtrip(s Snapshot) error {
	original, err := s.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}

	data, err := s.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}

	decoded, err := DeserializeFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}

	roundtrip, err := decoded.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute deserialized checksum: %w", err)
	}

	if original.Hash != roundtrip.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, deserialized=%s", original.Hash, roundtrip.Hash)
	}

	return nil
}
