// Package merge coordinates incremental recomputation of the silver and gold
// layers. Each (year, bene_id_prefix) partition carries a watermark state
// persisted at the lake root; a partition is recomputed only when its bronze
// source file set changes, and recomputation fully replaces the partition's
// output so retries are safe.
package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// WatermarksFile is the state file name at the lake root.
const WatermarksFile = "_watermarks.json"

// State is the lifecycle of one partition.
type State string

const (
	// StateClean means the partition's outputs match its current sources.
	StateClean State = "clean"
	// StateDirty means the sources changed since the last successful run.
	StateDirty State = "dirty"
	// StateProcessing means a writer is (or was, if we crashed) replacing
	// the partition's outputs.
	StateProcessing State = "processing"
	// StateMerging means the partition's silver outputs are committed but
	// the gold merge for its member-years has not completed.
	StateMerging State = "merging"
)

// PartitionKey identifies one (year, bene_id_prefix) partition.
type PartitionKey struct {
	Year   int32
	Prefix string
}

func (k PartitionKey) String() string {
	return fmt.Sprintf("year=%d/bene_id_prefix=%s", k.Year, k.Prefix)
}

// PartitionState is the persisted watermark for one partition.
type PartitionState struct {
	State     State     `json:"state"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Watermarks is the lake-root state table, keyed by PartitionKey.String().
// It is loaded at run start and written back at every state transition so a
// crash can never leave a silently half-written partition looking clean.
type Watermarks struct {
	Partitions map[string]*PartitionState `json:"partitions"`
}

// LoadWatermarks reads the state file, returning an empty table when none
// exists yet.
func LoadWatermarks(lakeRoot string) (*Watermarks, error) {
	w := &Watermarks{Partitions: make(map[string]*PartitionState)}
	b, err := os.ReadFile(filepath.Join(lakeRoot, WatermarksFile))
	if errors.Is(err, fs.ErrNotExist) {
		return w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read watermarks: %w", err)
	}
	if err := json.Unmarshal(b, w); err != nil {
		return nil, fmt.Errorf("parse watermarks: %w", err)
	}
	if w.Partitions == nil {
		w.Partitions = make(map[string]*PartitionState)
	}
	return w, nil
}

// Save writes the state table atomically via a temp file rename.
func (w *Watermarks) Save(lakeRoot string) error {
	b, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(lakeRoot, WatermarksFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write watermarks: %w", err)
	}
	return os.Rename(tmp, path)
}

// Get returns the state entry for a partition, nil when never seen.
func (w *Watermarks) Get(k PartitionKey) *PartitionState {
	return w.Partitions[k.String()]
}

// Set transitions a partition to the given state.
func (w *Watermarks) Set(k PartitionKey, s State, checksum string) {
	w.Partitions[k.String()] = &PartitionState{
		State:     s,
		Checksum:  checksum,
		UpdatedAt: time.Now().UTC(),
	}
}

// RecoverProcessing demotes partitions left in Processing by a crashed run
// back to Dirty and returns the demoted keys.
func (w *Watermarks) RecoverProcessing() []string {
	var demoted []string
	for key, ps := range w.Partitions {
		if ps.State == StateProcessing {
			ps.State = StateDirty
			ps.UpdatedAt = time.Now().UTC()
			demoted = append(demoted, key)
		}
	}
	sort.Strings(demoted)
	return demoted
}

// SourceChecksum fingerprints a partition's source file set: the sorted
// relative names, sizes, and content hashes of every file. Any new, removed,
// or rewritten file changes the checksum.
func SourceChecksum(files []string) (string, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, path := range sorted {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("checksum %s: %w", path, err)
		}
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return "", fmt.Errorf("checksum %s: %w", path, err)
		}
		fmt.Fprintf(h, "%s\x00%d\x00", filepath.Base(path), st.Size())
		if _, err := io.Copy(h, f); err != nil {
			f.Close()
			return "", fmt.Errorf("checksum %s: %w", path, err)
		}
		f.Close()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
