package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kardemumma/kardemumma/internal/models"
	"github.com/kardemumma/kardemumma/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
		IsConflict: isUniqueViolation,
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *PostgresStore) CreateQuestion(q *models.ScoringQuestion) error {
	err := s.DB.Get(&q.ID, `
		INSERT INTO scoring_questions (key, label, question_group, help_text, max_score, is_negative, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, q.Key, q.Label, q.Group, q.HelpText, q.MaxScore, q.IsNegative, q.SortOrder, q.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("question key %q: %w", q.Key, store.ErrConflict)
		}
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAdmin(a *models.Admin) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	err := s.DB.Get(&a.ID, `
		INSERT INTO admins (name, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, a.Name, a.Email, a.PasswordHash, a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("admin email %q: %w", a.Email, store.ErrConflict)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateFeature(f *models.FeatureRequest) error {
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	err := s.DB.Get(&f.ID, `
		INSERT INTO feature_requests (code, title, summary, module, status, requested_by, tenant, tags, decision_notes, created_by_admin_id, updated_by_admin_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, f.Code, f.Title, f.Summary, f.Module, f.Status, f.RequestedBy, f.Tenant, f.Tags, f.DecisionNotes, f.CreatedByAdminID, f.UpdatedByAdminID, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("feature code %q: %w", f.Code, store.ErrConflict)
		}
		return fmt.Errorf("failed to create feature: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateModule(m *models.FeatureModule) error {
	err := s.DB.Get(&m.ID, `
		INSERT INTO feature_modules (label, value, sort_order, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, m.Label, m.Value, m.SortOrder, m.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("module value %q: %w", m.Value, store.ErrConflict)
		}
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}
