package usage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/jatin2507/docdelta/migrations"
)

// setupTestDB creates an in-memory database and runs migrations
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	migrationsPath := filepath.Join("..", "migrations")
	if err := migrations.RunMigrations(db, migrationsPath, zerolog.Nop()); err != nil {
		_ = db.Close() //nolint:errcheck // Cleanup on error
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestStore_RecordAndTotals(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	store := NewStore(db)
	ctx := context.Background()

	records := []*Record{
		{Provider: "anthropic", Model: "claude-haiku-4-5", Operation: "generate_text", TotalTokens: 100, PromptTokens: 60, CompletionTokens: 40, Cost: 0.01},
		{Provider: "anthropic", Model: "claude-haiku-4-5", Operation: "summarize", TotalTokens: 50, Cost: 0.005},
		{Provider: "ollama", Model: "llama3.2:3b", Operation: "generate_text", TotalTokens: 200},
	}
	for _, rec := range records {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	totals, err := store.TotalsByProvider(ctx)
	if err != nil {
		t.Fatalf("TotalsByProvider: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("totals = %d, want 2", len(totals))
	}

	// Ordered by provider: anthropic, ollama.
	if totals[0].Provider != "anthropic" || totals[0].Calls != 2 || totals[0].TotalTokens != 150 {
		t.Errorf("unexpected anthropic totals: %+v", totals[0])
	}
	if totals[1].Provider != "ollama" || totals[1].Calls != 1 || totals[1].TotalTokens != 200 {
		t.Errorf("unexpected ollama totals: %+v", totals[1])
	}
}

func TestStore_RecentRecords(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	store := NewStore(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		rec := &Record{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Operation:   "generate_text",
			TotalTokens: int64(i + 1),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.RecentRecords(ctx, 3)
	if err != nil {
		t.Fatalf("RecentRecords: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("records = %d, want 3", len(recent))
	}
	// Newest first.
	if recent[0].TotalTokens != 5 || recent[2].TotalTokens != 3 {
		t.Errorf("unexpected ordering: %+v", recent)
	}
}

func TestStore_RecordDefaultsCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	store := NewStore(db)
	if err := store.Record(context.Background(), &Record{Provider: "anthropic", Model: "m", Operation: "op"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	recent, err := store.RecentRecords(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecentRecords: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("records = %d, want 1", len(recent))
	}
	if recent[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should have been defaulted")
	}
}

func TestNopRecorder(t *testing.T) {
	var rec Recorder = NopRecorder{}
	if err := rec.Record(context.Background(), &Record{}); err != nil {
		t.Errorf("NopRecorder.Record: %v", err)
	}
}
