package db

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/GustavoCosta/typewriter/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDB, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })

	if err := testDB.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return testDB
}

func TestOpenFileAndMigrateTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if database.Path() != path {
		t.Fatalf("unexpected path %q", database.Path())
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRunRepositoryLifecycle(t *testing.T) {
	database := setupTestDB(t)
	repo := NewRunRepository(database)
	ctx := context.Background()

	run := &models.Run{Script: "demo", Loop: true, TypeSpeed: 20 * time.Millisecond}
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run id")
	}
	if run.Status != models.RunStatusRunning {
		t.Fatalf("expected running status, got %q", run.Status)
	}

	if err := repo.Finish(ctx, run.ID, models.RunStatusStopped, 12, ""); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	got, err := repo.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.RunStatusStopped || got.Actions != 12 || !got.Loop {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.TypeSpeed != 20*time.Millisecond {
		t.Fatalf("unexpected type speed: %s", got.TypeSpeed)
	}
	if got.FinishedAt == nil {
		t.Fatal("expected finished_at")
	}
}

func TestRunRepositoryErrors(t *testing.T) {
	database := setupTestDB(t)
	repo := NewRunRepository(database)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := repo.Finish(ctx, "missing", models.RunStatusCompleted, 0, ""); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := repo.Create(ctx, &models.Run{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRunRepositoryListNewestFirst(t *testing.T) {
	database := setupTestDB(t)
	repo := NewRunRepository(database)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		run := &models.Run{Script: name, StartedAt: base.Add(time.Duration(i) * 500 * time.Millisecond)}
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	runs, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].Script != "third" || runs[1].Script != "second" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestEventRepositoryCreateAndQuery(t *testing.T) {
	database := setupTestDB(t)
	repo := NewEventRepository(database)
	ctx := context.Background()

	payload, _ := json.Marshal(models.ActionPayload{Seq: 1, Kind: "type", Ticks: 3, Text: "abc"})
	first := &models.Event{
		Type:       models.EventTypeActionCompleted,
		EntityType: models.EntityTypeRun,
		EntityID:   "run-1",
		Payload:    payload,
		Metadata:   map[string]string{"script": "demo"},
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == "" || first.Timestamp.IsZero() {
		t.Fatal("expected id and timestamp to be assigned")
	}

	second := &models.Event{
		Type:       models.EventTypeRunFinished,
		EntityType: models.EntityTypeRun,
		EntityID:   "run-1",
		Timestamp:  first.Timestamp.Add(time.Millisecond),
	}
	other := &models.Event{
		Type:       models.EventTypeActionCompleted,
		EntityType: models.EntityTypeRun,
		EntityID:   "run-2",
	}
	for _, event := range []*models.Event{second, other} {
		if err := repo.Create(ctx, event); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	events, err := repo.ListByRun(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(events) != 2 || events[0].ID != first.ID || events[1].ID != second.ID {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].Metadata["script"] != "demo" {
		t.Fatalf("expected metadata to round trip, got %v", events[0].Metadata)
	}

	completed := models.EventTypeActionCompleted
	filtered, err := repo.Query(ctx, EventQuery{Type: &completed})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 completed events, got %d", len(filtered))
	}

	got, err := repo.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var decoded models.ActionPayload
	if err := json.Unmarshal(got.Payload, &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decoded.Text != "abc" || decoded.Ticks != 3 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestEventRepositoryRejectsInvalid(t *testing.T) {
	database := setupTestDB(t)
	repo := NewEventRepository(database)

	err := repo.Create(context.Background(), &models.Event{Type: models.EventTypeRunStarted})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}
