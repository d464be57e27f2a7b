package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	assessor_id   TEXT NOT NULL,
	assessee_name TEXT NOT NULL,
	context       TEXT NOT NULL DEFAULT '',
	finalized     INTEGER NOT NULL DEFAULT 0,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_assessee
	ON assessments(assessee_name, created_at DESC);

CREATE TABLE IF NOT EXISTS assessment_notes (
	assessment_id TEXT NOT NULL,
	field         TEXT NOT NULL,
	body          TEXT NOT NULL,
	PRIMARY KEY (assessment_id, field)
);

CREATE TABLE IF NOT EXISTS behavior_scores (
	assessment_id TEXT NOT NULL,
	behavior_id   INTEGER NOT NULL,
	checked       INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	PRIMARY KEY (assessment_id, behavior_id)
);

CREATE TABLE IF NOT EXISTS step_overrides (
	assessment_id TEXT NOT NULL,
	step_id       INTEGER NOT NULL,
	level         INTEGER NOT NULL,
	PRIMARY KEY (assessment_id, step_id)
);
`

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema. WAL keeps single-writer toggles cheap.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnavailable, path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrUnavailable, path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply schema: %w", ErrUnavailable, err)
	}
	return &SQLiteStore{db: db}, nil
}

// CreateAssessment opens a new session record.
func (s *SQLiteStore) CreateAssessment(ctx context.Context, a NewAssessment) (Assessment, error) {
	now := time.Now().UTC()
	rec := Assessment{
		ID:           uuid.NewString(),
		Title:        a.Title,
		AssessorID:   a.AssessorID,
		AssesseeName: a.AssesseeName,
		Context:      a.Context,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, title, assessor_id, assessee_name, context, finalized, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		rec.ID, rec.Title, rec.AssessorID, rec.AssesseeName, rec.Context,
		rec.CreatedAt.Unix(), rec.UpdatedAt.Unix(),
	)
	if err != nil {
		return Assessment{}, fmt.Errorf("%w: insert assessment: %w", ErrUnavailable, err)
	}
	return rec, nil
}

// GetAssessment returns a record by id.
func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, assessor_id, assessee_name, context, finalized, created_at, updated_at
		FROM assessments WHERE id = ?`, id)
	rec, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Assessment{}, fmt.Errorf("%w: get assessment: %w", ErrUnavailable, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT field, body FROM assessment_notes WHERE assessment_id = ?`, id)
	if err != nil {
		return Assessment{}, fmt.Errorf("%w: get notes: %w", ErrUnavailable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var field, body string
		if err := rows.Scan(&field, &body); err != nil {
			return Assessment{}, fmt.Errorf("%w: scan note: %w", ErrUnavailable, err)
		}
		if rec.Notes == nil {
			rec.Notes = make(map[string]string)
		}
		rec.Notes[field] = body
	}
	if err := rows.Err(); err != nil {
		return Assessment{}, fmt.Errorf("%w: iterate notes: %w", ErrUnavailable, err)
	}
	return rec, nil
}

// ListAssessments returns records newest first.
func (s *SQLiteStore) ListAssessments(ctx context.Context, assesseeName string, limit int) ([]Assessment, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unlimited
	}
	var (
		rows *sql.Rows
		err  error
	)
	if assesseeName != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, title, assessor_id, assessee_name, context, finalized, created_at, updated_at
			FROM assessments WHERE assessee_name = ?
			ORDER BY created_at DESC, id LIMIT ?`, assesseeName, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, title, assessor_id, assessee_name, context, finalized, created_at, updated_at
			FROM assessments ORDER BY created_at DESC, id LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list assessments: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		rec, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan assessment: %w", ErrUnavailable, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate assessments: %w", ErrUnavailable, err)
	}
	return out, nil
}

// UpdateAssessmentNotes saves free-text fields and finalizes the record.
func (s *SQLiteStore) UpdateAssessmentNotes(ctx context.Context, id string, notes map[string]string) error {
	if err := s.requireAssessment(ctx, id); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	for field, body := range notes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assessment_notes (assessment_id, field, body) VALUES (?, ?, ?)
			ON CONFLICT (assessment_id, field) DO UPDATE SET body = excluded.body`,
			id, field, body,
		); err != nil {
			return fmt.Errorf("%w: upsert note: %w", ErrUnavailable, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE assessments SET finalized = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Unix(), id,
	); err != nil {
		return fmt.Errorf("%w: finalize assessment: %w", ErrUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrUnavailable, err)
	}
	return nil
}

// PutBehaviorScore upserts one behavior flag.
func (s *SQLiteStore) PutBehaviorScore(ctx context.Context, assessmentID string, behaviorID int, checked bool) error {
	if err := s.requireAssessment(ctx, assessmentID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO behavior_scores (assessment_id, behavior_id, checked, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (assessment_id, behavior_id) DO UPDATE SET checked = excluded.checked, updated_at = excluded.updated_at`,
		assessmentID, behaviorID, boolToInt(checked), time.Now().UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert behavior score: %w", ErrUnavailable, err)
	}
	return nil
}

// BehaviorScores returns all persisted flags for an assessment.
func (s *SQLiteStore) BehaviorScores(ctx context.Context, assessmentID string) ([]BehaviorScore, error) {
	if err := s.requireAssessment(ctx, assessmentID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT behavior_id, checked FROM behavior_scores
		WHERE assessment_id = ? ORDER BY behavior_id`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: query behavior scores: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	out := make([]BehaviorScore, 0)
	for rows.Next() {
		var (
			bs      BehaviorScore
			checked int
		)
		if err := rows.Scan(&bs.BehaviorID, &checked); err != nil {
			return nil, fmt.Errorf("%w: scan behavior score: %w", ErrUnavailable, err)
		}
		bs.Checked = checked != 0
		out = append(out, bs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate behavior scores: %w", ErrUnavailable, err)
	}
	return out, nil
}

// PutStepOverride upserts a manual step level; 0 clears it.
func (s *SQLiteStore) PutStepOverride(ctx context.Context, assessmentID string, stepID, level int) error {
	if err := s.requireAssessment(ctx, assessmentID); err != nil {
		return err
	}
	if level == 0 {
		if _, err := s.db.ExecContext(ctx, `
			DELETE FROM step_overrides WHERE assessment_id = ? AND step_id = ?`,
			assessmentID, stepID,
		); err != nil {
			return fmt.Errorf("%w: clear step override: %w", ErrUnavailable, err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO step_overrides (assessment_id, step_id, level) VALUES (?, ?, ?)
		ON CONFLICT (assessment_id, step_id) DO UPDATE SET level = excluded.level`,
		assessmentID, stepID, level,
	); err != nil {
		return fmt.Errorf("%w: upsert step override: %w", ErrUnavailable, err)
	}
	return nil
}

// StepOverrides returns the manual step levels for an assessment.
func (s *SQLiteStore) StepOverrides(ctx context.Context, assessmentID string) (map[int]int, error) {
	if err := s.requireAssessment(ctx, assessmentID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT step_id, level FROM step_overrides WHERE assessment_id = ?`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: query step overrides: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var stepID, level int
		if err := rows.Scan(&stepID, &level); err != nil {
			return nil, fmt.Errorf("%w: scan step override: %w", ErrUnavailable, err)
		}
		out[stepID] = level
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate step overrides: %w", ErrUnavailable, err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) requireAssessment(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM assessments WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: lookup assessment: %w", ErrUnavailable, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (Assessment, error) {
	var (
		rec                  Assessment
		finalized            int
		createdAt, updatedAt int64
	)
	if err := row.Scan(&rec.ID, &rec.Title, &rec.AssessorID, &rec.AssesseeName,
		&rec.Context, &finalized, &createdAt, &updatedAt); err != nil {
		return Assessment{}, err
	}
	rec.Finalized = finalized != 0
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	rec.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
