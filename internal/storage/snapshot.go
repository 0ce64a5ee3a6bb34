package storage

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/tilerules/internal/world"
)

// SnapshotFormat identifies snapshot files in their header line.
const SnapshotFormat = "tilerules-snapshot"

// SnapshotVersion is the current snapshot layout version.
const SnapshotVersion = 1

// SnapshotHeader is written as a JSON line in front of the gob body so a
// snapshot can be identified with zstdcat | head -1.
type SnapshotHeader struct {
	Format     string    `json:"format"`
	Version    int       `json:"version"`
	ScenarioID string    `json:"scenario_id"`
	Tick       uint64    `json:"tick"`
	Seed       int64     `json:"seed"`
	SavedAt    time.Time `json:"saved_at"`
}

// Snapshot is a saved world and the scenario it belongs to.
type Snapshot struct {
	Header SnapshotHeader
	World  world.World
}

// NewSnapshot wraps a world for saving.
func NewSnapshot(scenarioID string, w world.World) Snapshot {
	return Snapshot{
		Header: SnapshotHeader{
			Format:     SnapshotFormat,
			Version:    SnapshotVersion,
			ScenarioID: scenarioID,
			Tick:       w.Tick,
			Seed:       w.Seed,
			SavedAt:    time.Now().UTC(),
		},
		World: w,
	}
}

// SnapshotPath returns the default snapshot file for a scenario.
func SnapshotPath(dir, scenarioID string) string {
	return filepath.Join(dir, scenarioID+".snap.zst")
}

// WriteSnapshot writes a zstd-compressed snapshot: a JSON header line
// followed by the gob-encoded snapshot.
func WriteSnapshot(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: cannot create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("storage: cannot create snapshot: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("storage: zstd writer: %w", err)
	}

	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("storage: encode header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return fmt.Errorf("storage: write header: %w", err)
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("storage: gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("storage: flush snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("storage: close zstd writer: %w", err)
	}
	return f.Sync()
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, fmt.Errorf("storage: open snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, fmt.Errorf("storage: zstd reader: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("storage: read header: %w", err)
	}
	var header SnapshotHeader
	if err := json.Unmarshal(line, &header); err != nil {
		return snap, fmt.Errorf("storage: parse header: %w", err)
	}
	if header.Format != SnapshotFormat {
		return snap, fmt.Errorf("storage: %s is not a snapshot (format %q)", path, header.Format)
	}
	if header.Version != SnapshotVersion {
		return snap, fmt.Errorf("storage: unsupported snapshot version %d", header.Version)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("storage: gob decode: %w", err)
	}
	world.EnsureReservedGlobals(&snap.World)
	return snap, nil
}
