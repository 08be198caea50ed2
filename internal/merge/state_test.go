package merge

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWatermarksRoundtrip(t *testing.T) {
	root := t.TempDir()

	wm, err := LoadWatermarks(root)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(wm.Partitions) != 0 {
		t.Fatalf("fresh watermarks not empty: %v", wm.Partitions)
	}

	k := PartitionKey{Year: 2009, Prefix: "AA"}
	wm.Set(k, StateClean, "abc123")
	if err := wm.Save(root); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadWatermarks(root)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	ps := got.Get(k)
	if ps == nil || ps.State != StateClean || ps.Checksum != "abc123" {
		t.Errorf("reloaded state = %+v", ps)
	}
}

func TestRecoverProcessing(t *testing.T) {
	wm := &Watermarks{Partitions: map[string]*PartitionState{}}
	a := PartitionKey{Year: 2008, Prefix: "AA"}
	b := PartitionKey{Year: 2009, Prefix: "BB"}
	m := PartitionKey{Year: 2009, Prefix: "CC"}
	wm.Set(a, StateProcessing, "x")
	wm.Set(b, StateClean, "y")
	wm.Set(m, StateMerging, "z")

	demoted := wm.RecoverProcessing()
	if len(demoted) != 1 || demoted[0] != a.String() {
		t.Errorf("demoted = %v, want [%s]", demoted, a)
	}
	if wm.Get(a).State != StateDirty {
		t.Errorf("state = %s, want dirty", wm.Get(a).State)
	}
	if wm.Get(b).State != StateClean {
		t.Errorf("clean partition touched: %s", wm.Get(b).State)
	}
	if wm.Get(m).State != StateMerging {
		t.Errorf("merging partition touched: %s", wm.Get(m).State)
	}
}

func TestSourceChecksumDetectsChange(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.parquet")
	b := filepath.Join(dir, "b.parquet")
	if err := os.WriteFile(a, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum1, err := SourceChecksum([]string{a, b})
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	// Order-insensitive.
	sum2, err := SourceChecksum([]string{b, a})
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	if sum1 != sum2 {
		t.Error("checksum depends on input order")
	}

	if err := os.WriteFile(b, []byte("two changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	sum3, err := SourceChecksum([]string{a, b})
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	if sum3 == sum1 {
		t.Error("content change did not change checksum")
	}

	sum4, err := SourceChecksum([]string{a})
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	if sum4 == sum3 {
		t.Error("file removal did not change checksum")
	}
}
