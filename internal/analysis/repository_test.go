package analysis

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/videoaudit/audit-agent/internal/db"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewRepository(database.Conn())
}

func testArtifact(id string, created time.Time) *Artifact {
	score := 72
	return &Artifact{
		VideoID:     id,
		VideoURL:    "https://storage.example.com/" + id + ".mp4",
		RawAnalysis: `[{"id":"r1","type":"hook","title":"t","description":"d","priority":"high"}]`,
		Recommendations: []Recommendation{
			{ID: "r1", Type: RecTypeHook, Title: "t", Description: "d", Priority: PriorityHigh, Timestamp: ts(2)},
		},
		RetentionScore: &score,
		FinalStatus:    StatusChangesNeeded,
		EditingTimeline: []EditingStep{
			{Timestamp: "00:02", TimestampSeconds: 2, ActionType: ActionCut, TechnicalAction: "Trim the intro", Reason: "Dead air"},
		},
		Degraded:      false,
		ParseDegraded: false,
		CreatedAt:     created,
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	want := testArtifact("vid-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err := repo.PutArtifact(ctx, want); err != nil {
		t.Fatalf("failed to store artifact: %v", err)
	}

	got, err := repo.GetArtifact(ctx, "vid-1")
	if err != nil {
		t.Fatalf("failed to get artifact: %v", err)
	}
	if got == nil {
		t.Fatal("expected artifact, got nil")
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestPutArtifactIdempotent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	a := testArtifact("vid-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err := repo.PutArtifact(ctx, a); err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	if err := repo.PutArtifact(ctx, a); err != nil {
		t.Fatalf("second put failed: %v", err)
	}

	count, err := repo.CountArtifacts(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 artifact after re-put, got %d", count)
	}
}

func TestGetArtifactNotFound(t *testing.T) {
	repo := testRepo(t)

	got, err := repo.GetArtifact(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("expected no error for absent artifact, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for absent artifact, got %+v", got)
	}
}

func TestListArtifactIDsNewestFirst(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		a := testArtifact(id, base.Add(time.Duration(i)*time.Minute))
		if err := repo.PutArtifact(ctx, a); err != nil {
			t.Fatalf("failed to store %s: %v", id, err)
		}
	}

	ids, err := repo.ListArtifactIDs(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	want := []string{"new", "mid", "old"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestListArtifactsLimit(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		a := testArtifact(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := repo.PutArtifact(ctx, a); err != nil {
			t.Fatalf("failed to store artifact %d: %v", i, err)
		}
	}

	recent, err := repo.ListArtifacts(ctx, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(recent))
	}
	if recent[0].VideoID != "e" || recent[1].VideoID != "d" {
		t.Errorf("expected newest first, got %s, %s", recent[0].VideoID, recent[1].VideoID)
	}

	all, err := repo.ListArtifacts(ctx, 0)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected limit<=0 to return all 5, got %d", len(all))
	}
}

func TestDeleteArtifact(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	a := testArtifact("vid-1", time.Now().UTC())
	if err := repo.PutArtifact(ctx, a); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if err := repo.DeleteArtifact(ctx, "vid-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got, err := repo.GetArtifact(ctx, "vid-1")
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if got != nil {
		t.Error("expected artifact gone after delete")
	}

	// deleting an absent artifact is not an error
	if err := repo.DeleteArtifact(ctx, "vid-1"); err != nil {
		t.Errorf("expected delete of absent artifact to succeed, got %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	val, err := repo.GetConfig(ctx, "missing")
	if err != nil {
		t.Fatalf("expected no error for missing key, got %v", err)
	}
	if val != "" {
		t.Errorf("expected empty value for missing key, got %q", val)
	}

	if err := repo.SetConfig(ctx, "auth_token", "secret"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := repo.SetConfig(ctx, "auth_token", "rotated"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	val, err = repo.GetConfig(ctx, "auth_token")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if val != "rotated" {
		t.Errorf("expected rotated, got %q", val)
	}
}
