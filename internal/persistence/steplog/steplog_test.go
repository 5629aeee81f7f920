package steplog

import (
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := PathForRun(t.TempDir(), "run-1")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	at := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{RunID: "run-1", At: at, Pos: [3]float64{0.5, 64, 0.5}, Target: [3]float64{10.5, 64, 0.5}, Distance: 10, Success: true, Progress: 1.0, Narrative: "walked forward"},
		{RunID: "run-1", At: at.Add(time.Second), Pos: [3]float64{1.5, 64, 0.5}, Target: [3]float64{10.5, 64, 0.5}, Distance: 9, Success: true, Progress: 0.9, Mined: 2, Narrative: "mined through"},
		{RunID: "run-1", At: at.Add(2 * time.Second), Pos: [3]float64{2.5, 64, 0.5}, Target: [3]float64{10.5, 64, 0.5}, Distance: 8, Success: false, Code: "E_NO_PROGRESS"},
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("entries: got %d want %d", len(got), len(entries))
	}
	for i, e := range got {
		if e.Seq != i+1 {
			t.Fatalf("entry %d: seq %d", i, e.Seq)
		}
		if e.Narrative != entries[i].Narrative || e.Mined != entries[i].Mined {
			t.Fatalf("entry %d: got %+v", i, e)
		}
	}
	if got[2].Code != "E_NO_PROGRESS" || got[2].Success {
		t.Fatalf("failed entry mangled: %+v", got[2])
	}
}

func TestAppendAddsFrame(t *testing.T) {
	path := PathForRun(t.TempDir(), "run-2")

	for session := 0; session < 2; session++ {
		w, err := NewWriter(path)
		if err != nil {
			t.Fatalf("session %d: %v", session, err)
		}
		if err := w.Write(Entry{RunID: "run-2", Success: true}); err != nil {
			t.Fatalf("session %d write: %v", session, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("session %d close: %v", session, err)
		}
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries across frames: got %d want 2", len(got))
	}
}
