package calllog

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAppendAndList(t *testing.T) {
	db := testDB(t)

	err := db.Append(Record{
		Provider:     "claude",
		Model:        "claude-haiku-4-5",
		DocType:      "notebook",
		Tone:         "soft",
		PromptCID:    "abc123",
		InputTokens:  10,
		OutputTokens: 20,
		LatencyMs:    150,
		Success:      true,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := db.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d", len(records))
	}

	r := records[0]
	if r.ID == "" {
		t.Error("ID should be auto-filled")
	}
	if r.CreatedAt.IsZero() {
		t.Error("CreatedAt should be auto-filled")
	}
	if r.Provider != "claude" || r.DocType != "notebook" || r.Tone != "soft" {
		t.Errorf("unexpected record: %+v", r)
	}
	if !r.Success || r.InputTokens != 10 || r.OutputTokens != 20 || r.LatencyMs != 150 {
		t.Errorf("unexpected record: %+v", r)
	}
}

func TestAppendFailureRecord(t *testing.T) {
	db := testDB(t)
	if err := db.Append(Record{Provider: "claude", Error: "status 500: overloaded"}); err != nil {
		t.Fatal(err)
	}
	records, err := db.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Success {
		t.Error("record should not be marked successful")
	}
	if records[0].Error == "" {
		t.Error("error message lost")
	}
}

func TestListNewestFirst(t *testing.T) {
	db := testDB(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := db.Append(Record{
			Provider:  "claude",
			PromptCID: fmt.Sprintf("cid-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	records, err := db.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d", len(records))
	}
	if records[0].PromptCID != "cid-2" || records[2].PromptCID != "cid-0" {
		t.Errorf("not newest first: %s .. %s", records[0].PromptCID, records[2].PromptCID)
	}
}

func TestListLimit(t *testing.T) {
	db := testDB(t)
	for i := 0; i < 5; i++ {
		if err := db.Append(Record{Provider: "claude"}); err != nil {
			t.Fatal(err)
		}
	}
	records, err := db.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("len = %d, want 2", len(records))
	}
}

func TestCount(t *testing.T) {
	db := testDB(t)
	for i := 0; i < 4; i++ {
		if err := db.Append(Record{Provider: "openai"}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("count = %d", n)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	defer db.Close()
	if err := db.Append(Record{Provider: "claude"}); err != nil {
		t.Fatal(err)
	}
}

func TestOpenEmptyDSNDefaultsToMemory(t *testing.T) {
	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := db.Append(Record{Provider: "claude"}); err != nil {
		t.Fatal(err)
	}
}
