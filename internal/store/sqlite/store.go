// internal/store/sqlite/store.go
package sqlite

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/kardemumma/kardemumma/internal/models"
	"github.com/kardemumma/kardemumma/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
		IsConflict: isUniqueViolation,
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	replacements := map[string]string{
		"BIGSERIAL PRIMARY KEY": "INTEGER PRIMARY KEY AUTOINCREMENT",
		"BIGINT":                "INTEGER",
		"TIMESTAMPTZ":           "TIMESTAMP",
		"TRUE":                  "1",
		"FALSE":                 "0",
		"now()":                 "CURRENT_TIMESTAMP",
		"::text":                "",
	}
	result := sql
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	return result
}

// isUniqueViolation matches only unique-constraint failures; FK and CHECK
// violations are plain errors, same as the postgres path's 23505.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *SQLiteStore) CreateQuestion(q *models.ScoringQuestion) error {
	res, err := s.DB.Exec(`
		INSERT INTO scoring_questions (key, label, question_group, help_text, max_score, is_negative, sort_order, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, q.Key, q.Label, q.Group, q.HelpText, q.MaxScore, q.IsNegative, q.SortOrder, q.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("question key %q: %w", q.Key, store.ErrConflict)
		}
		return fmt.Errorf("failed to create question: %w", err)
	}
	q.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read question id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateAdmin(a *models.Admin) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	res, err := s.DB.Exec(`
		INSERT INTO admins (name, email, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.Name, a.Email, a.PasswordHash, a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("admin email %q: %w", a.Email, store.ErrConflict)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read admin id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateFeature(f *models.FeatureRequest) error {
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	res, err := s.DB.Exec(`
		INSERT INTO feature_requests (code, title, summary, module, status, requested_by, tenant, tags, decision_notes, created_by_admin_id, updated_by_admin_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.Code, f.Title, f.Summary, f.Module, f.Status, f.RequestedBy, f.Tenant, f.Tags, f.DecisionNotes, f.CreatedByAdminID, f.UpdatedByAdminID, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("feature code %q: %w", f.Code, store.ErrConflict)
		}
		return fmt.Errorf("failed to create feature: %w", err)
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read feature id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateModule(m *models.FeatureModule) error {
	res, err := s.DB.Exec(`
		INSERT INTO feature_modules (label, value, sort_order, is_active)
		VALUES (?, ?, ?, ?)
	`, m.Label, m.Value, m.SortOrder, m.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("module value %q: %w", m.Value, store.ErrConflict)
		}
		return fmt.Errorf("failed to create module: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read module id: %w", err)
	}
	return nil
}
