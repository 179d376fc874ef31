// ABOUTME: Tests for Repository interface implementations.
// ABOUTME: Verifies CRUD operations for goals, progress and conversations using SQLite.
package storage

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/harperreed/trackwise/internal/models"
)

func TestCreateAndGetGoal(t *testing.T) {
	db := setupTestDB(t)

	g := models.NewGoal("Learn Go").WithDescription("Finish the tour")

	if err := db.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	if g.ID <= 0 {
		t.Fatalf("expected positive ID, got %d", g.ID)
	}

	got, err := db.GetGoal(g.ID)
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}

	if got.Title != "Learn Go" {
		t.Errorf("Title mismatch: got %v, want Learn Go", got.Title)
	}
	if got.Description == nil || *got.Description != "Finish the tour" {
		t.Errorf("Description mismatch: got %v", got.Description)
	}
	if got.Status != models.StatusActive {
		t.Errorf("Status mismatch: got %v", got.Status)
	}
	if !got.CreatedAt.Equal(g.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, g.CreatedAt)
	}
}

func TestCreateGoalPreservesID(t *testing.T) {
	db := setupTestDB(t)

	g := models.NewGoal("Imported")
	g.ID = 42
	if err := db.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	if g.ID != 42 {
		t.Errorf("ID = %d, want 42", g.ID)
	}

	next := models.NewGoal("Next")
	if err := db.CreateGoal(next); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	if next.ID <= 42 {
		t.Errorf("next ID = %d, want > 42", next.ID)
	}
}

func TestCreateGoalValidation(t *testing.T) {
	db := setupTestDB(t)

	err := db.CreateGoal(models.NewGoal("   "))
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestGetGoalNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetGoal(999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListGoals(t *testing.T) {
	db := setupTestDB(t)

	g1 := models.NewGoal("Oldest")
	g1.CreatedAt = time.Now().Add(-2 * time.Hour)
	g2 := models.NewGoal("Middle").WithStatus(models.StatusPaused)
	g2.CreatedAt = time.Now().Add(-1 * time.Hour)
	g3 := models.NewGoal("Newest")

	for _, g := range []*models.Goal{g1, g2, g3} {
		if err := db.CreateGoal(g); err != nil {
			t.Fatalf("CreateGoal failed: %v", err)
		}
	}

	all, err := db.ListGoals(nil, 0)
	if err != nil {
		t.Fatalf("ListGoals failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 goals, got %d", len(all))
	}
	if all[0].Title != "Newest" || all[2].Title != "Oldest" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].Title, all[1].Title, all[2].Title)
	}

	active := models.StatusActive
	filtered, err := db.ListGoals(&active, 0)
	if err != nil {
		t.Fatalf("ListGoals failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("Expected 2 active goals, got %d", len(filtered))
	}

	limited, err := db.ListGoals(nil, 1)
	if err != nil {
		t.Fatalf("ListGoals failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 goal with limit, got %d", len(limited))
	}
}

func TestUpdateGoal(t *testing.T) {
	db := setupTestDB(t)

	g := models.NewGoal("Draft")
	g.UpdatedAt = time.Now().Add(-time.Hour)
	if err := db.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	before := g.UpdatedAt

	g.Title = "Final"
	g.Status = models.StatusDone
	if err := db.UpdateGoal(g); err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}

	got, err := db.GetGoal(g.ID)
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if got.Title != "Final" || got.Status != models.StatusDone {
		t.Errorf("update not persisted: %+v", got)
	}
	if !got.UpdatedAt.After(before) {
		t.Errorf("UpdatedAt not bumped: %v <= %v", got.UpdatedAt, before)
	}

	missing := models.NewGoal("Ghost")
	missing.ID = 777
	if err := db.UpdateGoal(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}
}

func TestProgressCRUD(t *testing.T) {
	db := setupTestDB(t)
	g := createGoal(t, db, "Piano")

	now := time.Now()
	p1 := models.NewProgressEntry(g.ID, "scales").WithHours(1.5).WithDate(now.Add(-48 * time.Hour))
	p2 := models.NewProgressEntry(g.ID, "sight reading").WithDate(now.Add(-24 * time.Hour))
	p3 := models.NewProgressEntry(g.ID, "recital piece").WithHours(2).WithDate(now)

	for _, p := range []*models.ProgressEntry{p1, p2, p3} {
		if err := db.AddProgress(p); err != nil {
			t.Fatalf("AddProgress failed: %v", err)
		}
	}

	entries, err := db.ListProgress(g.ID, 0)
	if err != nil {
		t.Fatalf("ListProgress failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Note != "recital piece" || entries[2].Note != "scales" {
		t.Errorf("expected most recent first, got %s ... %s", entries[0].Note, entries[2].Note)
	}
	if entries[1].Hours != nil {
		t.Errorf("expected absent hours to stay absent, got %v", *entries[1].Hours)
	}

	got, err := db.GetProgress(p1.ID)
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if got.Hours == nil || *got.Hours != 1.5 {
		t.Errorf("Hours mismatch: got %v", got.Hours)
	}

	if err := db.DeleteProgress(p2.ID); err != nil {
		t.Fatalf("DeleteProgress failed: %v", err)
	}
	if _, err := db.GetProgress(p2.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.DeleteProgress(p2.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}

	full, err := db.GetGoalWithProgress(g.ID)
	if err != nil {
		t.Fatalf("GetGoalWithProgress failed: %v", err)
	}
	if full.ProgressCount() != 2 || full.TotalHours() != 3.5 {
		t.Errorf("stats = %d entries, %v hours; want 2, 3.5", full.ProgressCount(), full.TotalHours())
	}
}

func TestAddProgressRejectsNonFiniteHours(t *testing.T) {
	db := setupTestDB(t)
	g := models.NewGoal("Piano")
	if err := db.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	for _, h := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		err := db.AddProgress(models.NewProgressEntry(g.ID, "scales").WithHours(h))
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("hours %v: err = %v, want ErrValidation", h, err)
		}
	}

	entries, err := db.ListProgress(g.ID, 0)
	if err != nil {
		t.Fatalf("ListProgress failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("stored %d entries, want 0", len(entries))
	}
}

func TestProgressEntriesAreImmutable(t *testing.T) {
	db := setupTestDB(t)
	var r Repository = db
	if _, ok := r.(interface {
		UpdateProgress(*models.ProgressEntry) error
	}); ok {
		t.Error("progress entries must not be editable after they are added")
	}
}

func TestAddProgressRequiresGoal(t *testing.T) {
	db := setupTestDB(t)

	err := db.AddProgress(models.NewProgressEntry(404, "orphan"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAddProgressValidation(t *testing.T) {
	db := setupTestDB(t)
	g := createGoal(t, db, "Chess")

	tests := []struct {
		name  string
		entry *models.ProgressEntry
	}{
		{"blank note", models.NewProgressEntry(g.ID, "  ")},
		{"negative hours", models.NewProgressEntry(g.ID, "blitz").WithHours(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.AddProgress(tt.entry); !errors.Is(err, models.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestListProgressAcrossGoals(t *testing.T) {
	db := setupTestDB(t)
	a := createGoal(t, db, "A")
	b := createGoal(t, db, "B")

	for _, p := range []*models.ProgressEntry{
		models.NewProgressEntry(a.ID, "a1").WithDate(time.Now().Add(-time.Hour)),
		models.NewProgressEntry(b.ID, "b1"),
	} {
		if err := db.AddProgress(p); err != nil {
			t.Fatalf("AddProgress failed: %v", err)
		}
	}

	recent, err := db.ListProgress(0, 10)
	if err != nil {
		t.Fatalf("ListProgress failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Note != "b1" {
		t.Errorf("unexpected recent entries: %+v", recent)
	}
}

func TestConversationLifecycle(t *testing.T) {
	db := setupTestDB(t)
	g := createGoal(t, db, "Spanish")

	if _, err := db.LatestConversation(g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any conversation, got %v", err)
	}

	c := models.NewConversation(g.ID)
	if err := db.CreateConversation(c); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	base := time.Now()
	for i, m := range []*models.ChatMessage{
		models.NewChatMessage(c.ID, models.RoleUser, "How do I practice?"),
		models.NewChatMessage(c.ID, models.RoleAssistant, "Daily flashcards."),
		models.NewChatMessage(c.ID, models.RoleUser, "Thanks"),
	} {
		m.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		if err := db.AppendMessage(m); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	got, err := db.LatestConversation(g.ID)
	if err != nil {
		t.Fatalf("LatestConversation failed: %v", err)
	}
	if got.ID != c.ID || got.Title != "Learning Coach: "+itoa(g.ID) {
		t.Errorf("unexpected conversation: %+v", got)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Content != "How do I practice?" || got.Messages[2].Content != "Thanks" {
		t.Errorf("messages out of order: %+v", got.Messages)
	}
	if got.Messages[1].Role != models.RoleAssistant {
		t.Errorf("Role = %s, want assistant", got.Messages[1].Role)
	}
	if !got.UpdatedAt.Equal(base.Add(2 * time.Millisecond)) {
		t.Errorf("UpdatedAt = %v, want last message time", got.UpdatedAt)
	}
}

func TestLatestConversationPicksMostRecentlyUpdated(t *testing.T) {
	db := setupTestDB(t)
	g := createGoal(t, db, "Drawing")

	older := models.NewConversation(g.ID)
	newer := models.NewConversation(g.ID)
	for _, c := range []*models.Conversation{older, newer} {
		if err := db.CreateConversation(c); err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
	}

	m := models.NewChatMessage(older.ID, models.RoleUser, "bump")
	m.CreatedAt = time.Now().Add(time.Minute)
	if err := db.AppendMessage(m); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	got, err := db.LatestConversation(g.ID)
	if err != nil {
		t.Fatalf("LatestConversation failed: %v", err)
	}
	if got.ID != older.ID {
		t.Errorf("LatestConversation ID = %d, want %d", got.ID, older.ID)
	}

	all, err := db.ListConversations(g.ID)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 conversations, got %d", len(all))
	}
}

func TestCreateConversationRequiresGoal(t *testing.T) {
	db := setupTestDB(t)

	err := db.CreateConversation(models.NewConversation(31))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAppendMessageRequiresConversation(t *testing.T) {
	db := setupTestDB(t)

	err := db.AppendMessage(models.NewChatMessage(55, models.RoleUser, "hello"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteGoalCascades(t *testing.T) {
	db := setupTestDB(t)
	g := createGoal(t, db, "Temporary")

	p := models.NewProgressEntry(g.ID, "note")
	if err := db.AddProgress(p); err != nil {
		t.Fatalf("AddProgress failed: %v", err)
	}
	c := models.NewConversation(g.ID)
	if err := db.CreateConversation(c); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if err := db.AppendMessage(models.NewChatMessage(c.ID, models.RoleUser, "hi")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	if err := db.DeleteGoal(g.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}

	if _, err := db.GetProgress(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("progress survived goal delete: %v", err)
	}
	if _, err := db.GetConversation(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("conversation survived goal delete: %v", err)
	}
	if err := db.DeleteGoal(g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	db := setupTestDB(t)

	var version int
	if err := db.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("user_version = %d, want %d", version, schemaVersion)
	}

	// Reopening an initialized database must not fail.
	path := db.Path()
	_ = db.Close()
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	_ = reopened.Close()
}

func TestDataDirFollowsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	if got := DataDir(); got != "/tmp/xdg-data/trackwise" {
		t.Errorf("DataDir() = %s", got)
	}
	if got := DefaultDBPath(); got != "/tmp/xdg-data/trackwise/trackwise.db" {
		t.Errorf("DefaultDBPath() = %s", got)
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "trackwise-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "trackwise.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func createGoal(t *testing.T, db *DB, title string) *models.Goal {
	t.Helper()

	g := models.NewGoal(title)
	if err := db.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	return g
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
