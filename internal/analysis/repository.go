package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository owns the persisted artifacts, keyed by video id. Values are
// immutable once written; PutArtifact is an idempotent overwrite so a
// repeated write of the same id cannot corrupt the store. GetArtifact
// returns (nil, nil) for an absent id so callers can distinguish "no
// result yet" from an error. ListArtifactIDs returns newest-first, the
// documented ordering for history listings.
type Repository interface {
	PutArtifact(ctx context.Context, a *Artifact) error
	GetArtifact(ctx context.Context, videoID string) (*Artifact, error)
	DeleteArtifact(ctx context.Context, videoID string) error
	ListArtifactIDs(ctx context.Context) ([]string, error)
	ListArtifacts(ctx context.Context, limit int) ([]*Artifact, error)
	CountArtifacts(ctx context.Context) (int, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const artifactColumns = `video_id, video_url, raw_analysis, recommendations, retention_score, final_status, editing_timeline, degraded, parse_degraded, created_at`

func (r *SQLiteRepository) PutArtifact(ctx context.Context, a *Artifact) error {
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	timeline, err := json.Marshal(a.EditingTimeline)
	if err != nil {
		return fmt.Errorf("marshal editing timeline: %w", err)
	}

	var score sql.NullInt64
	if a.RetentionScore != nil {
		score = sql.NullInt64{Int64: int64(*a.RetentionScore), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO artifacts (`+artifactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			video_url = excluded.video_url,
			raw_analysis = excluded.raw_analysis,
			recommendations = excluded.recommendations,
			retention_score = excluded.retention_score,
			final_status = excluded.final_status,
			editing_timeline = excluded.editing_timeline,
			degraded = excluded.degraded,
			parse_degraded = excluded.parse_degraded,
			created_at = excluded.created_at
	`, a.VideoID, nullString(a.VideoURL), a.RawAnalysis, string(recs), score,
		a.FinalStatus, string(timeline), boolToInt(a.Degraded), boolToInt(a.ParseDegraded),
		a.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *SQLiteRepository) GetArtifact(ctx context.Context, videoID string) (*Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+artifactColumns+` FROM artifacts WHERE video_id = ?
	`, videoID)
	return r.scanArtifact(row)
}

func (r *SQLiteRepository) DeleteArtifact(ctx context.Context, videoID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM artifacts WHERE video_id = ?`, videoID)
	return err
}

func (r *SQLiteRepository) ListArtifactIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT video_id FROM artifacts ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) ListArtifacts(ctx context.Context, limit int) ([]*Artifact, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT disables the limit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+artifactColumns+` FROM artifacts ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artifacts := []*Artifact{}
	for rows.Next() {
		a, err := r.scanArtifactRow(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

func (r *SQLiteRepository) CountArtifacts(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts`).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanArtifact(row *sql.Row) (*Artifact, error) {
	a, err := scanArtifactFields(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *SQLiteRepository) scanArtifactRow(rows *sql.Rows) (*Artifact, error) {
	return scanArtifactFields(rows)
}

func scanArtifactFields(row scannable) (*Artifact, error) {
	var a Artifact
	var videoURL sql.NullString
	var recs, timeline, createdAt string
	var score sql.NullInt64
	var degraded, parseDegraded int

	err := row.Scan(&a.VideoID, &videoURL, &a.RawAnalysis, &recs, &score,
		&a.FinalStatus, &timeline, &degraded, &parseDegraded, &createdAt)
	if err != nil {
		return nil, err
	}

	a.VideoURL = videoURL.String
	if score.Valid {
		v := int(score.Int64)
		a.RetentionScore = &v
	}
	a.Degraded = degraded == 1
	a.ParseDegraded = parseDegraded == 1

	if err := json.Unmarshal([]byte(recs), &a.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations for %s: %w", a.VideoID, err)
	}
	if err := json.Unmarshal([]byte(timeline), &a.EditingTimeline); err != nil {
		return nil, fmt.Errorf("unmarshal editing timeline for %s: %w", a.VideoID, err)
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", a.VideoID, err)
	}
	a.CreatedAt = t

	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
