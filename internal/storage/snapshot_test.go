package storage

import (
	"testing"

	"stock_go/internal/domain"
)

func TestSnapshot_SaveAndLoadLatest(t *testing.T) {
	dir := t.TempDir()
	sm := NewSnapshotManager(dir)

	snap := CreateSnapshot(42, []domain.Quote{
		{Symbol: "AAPL", PriceMicros: 150000000},
		{Symbol: "TSLA", PriceMicros: 800000000},
	})
	if err := sm.Save(snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := sm.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadLatest returned nil after Save")
	}
	if loaded.Seq != 42 {
		t.Errorf("Seq = %d; want 42", loaded.Seq)
	}
	if len(loaded.Quotes) != 2 {
		t.Fatalf("Quotes = %d; want 2", len(loaded.Quotes))
	}
	if loaded.Quotes[0].Symbol != "AAPL" || loaded.Quotes[0].PriceMicros != 150000000 {
		t.Errorf("quote mismatch: %+v", loaded.Quotes[0])
	}
}

func TestSnapshot_LoadLatestPicksHighestSeq(t *testing.T) {
	dir := t.TempDir()
	sm := NewSnapshotManager(dir)

	for _, seq := range []uint64{1, 9, 5} {
		if err := sm.Save(CreateSnapshot(seq, nil)); err != nil {
			t.Fatal(err)
		}
	}

	loaded, err := sm.LoadLatest()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seq != 9 {
		t.Errorf("LoadLatest Seq = %d; want 9", loaded.Seq)
	}
}

func TestSnapshot_LoadLatestEmptyDir(t *testing.T) {
	sm := NewSnapshotManager(t.TempDir() + "/none")
	loaded, err := sm.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest on missing dir errored: %v", err)
	}
	if loaded != nil {
		t.Error("expected nil snapshot for missing dir")
	}
}

func TestSnapshot_Cleanup(t *testing.T) {
	dir := t.TempDir()
	sm := NewSnapshotManager(dir)

	for seq := uint64(1); seq <= 5; seq++ {
		if err := sm.Save(CreateSnapshot(seq, nil)); err != nil {
			t.Fatal(err)
		}
	}

	if err := sm.Cleanup(2); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	loaded, _ := sm.LoadLatest()
	if loaded == nil || loaded.Seq != 5 {
		t.Fatal("Cleanup must keep the newest snapshot")
	}
}
