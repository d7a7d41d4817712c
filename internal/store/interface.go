package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kardemumma/kardemumma/internal/models"
)

type FeatureStore interface {
	Close() error
	ApplyMigrations(dir string) error

	ListQuestions(includeInactive bool) ([]models.ScoringQuestion, error)
	GetQuestion(id int64) (*models.ScoringQuestion, error)
	CreateQuestion(q *models.ScoringQuestion) error
	UpdateQuestion(q *models.ScoringQuestion) error
	DeactivateQuestion(id int64) error

	ListAdmins() ([]models.Admin, error)
	GetAdmin(id int64) (*models.Admin, error)
	GetAdminByEmail(email string) (*models.Admin, error)
	CreateAdmin(a *models.Admin) error
	UpdateAdmin(a *models.Admin) error
	TouchAdminLogin(id int64, at time.Time) error

	ListFeatures() ([]models.FeatureRequest, error)
	GetFeature(id int64) (*models.FeatureRequest, error)
	CreateFeature(f *models.FeatureRequest) error
	UpdateFeature(f *models.FeatureRequest) error
	DeleteFeature(id int64) error

	ListFeatureAnswers(featureID int64) ([]AnswerRow, error)
	ListAllAnswers() ([]AnswerRow, error)
	UpsertAnswers(featureID, adminID int64, answers []models.AnswerInput) error

	AppendDecisionLog(entry *models.FeatureDecisionLog) error
	ListDecisionLogs(featureID int64, limit int) ([]models.FeatureDecisionLog, error)

	ListModules() ([]models.FeatureModule, error)
	CreateModule(m *models.FeatureModule) error
	UpdateModule(m *models.FeatureModule) error
	DeleteModule(id int64) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB         *sqlx.DB
	Converter  func(string) string
	IsConflict func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) wrapWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	if s.IsConflict != nil && s.IsConflict(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

const questionColumns = `id, key, label, question_group, help_text, max_score, is_negative, sort_order, is_active`

func (s *BaseStore) ListQuestions(includeInactive bool) ([]models.ScoringQuestion, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM scoring_questions
		ORDER BY question_group, sort_order, id ASC
	`
	if !includeInactive {
		query = `
			SELECT ` + questionColumns + `
			FROM scoring_questions
			WHERE is_active = TRUE
			ORDER BY question_group, sort_order, id ASC
		`
	}

	var questions []models.ScoringQuestion
	if err := s.DB.Select(&questions, query); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *BaseStore) GetQuestion(id int64) (*models.ScoringQuestion, error) {
	var q models.ScoringQuestion
	query := s.Converter(`
		SELECT ` + questionColumns + `
		FROM scoring_questions
		WHERE id = ?
	`)

	err := s.DB.Get(&q, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

func (s *BaseStore) UpdateQuestion(q *models.ScoringQuestion) error {
	query := s.Converter(`
		UPDATE scoring_questions
		SET key = ?, label = ?, question_group = ?, help_text = ?,
		    max_score = ?, is_negative = ?, sort_order = ?, is_active = ?
		WHERE id = ?
	`)

	res, err := s.DB.Exec(query,
		q.Key, q.Label, q.Group, q.HelpText,
		q.MaxScore, q.IsNegative, q.SortOrder, q.IsActive,
		q.ID,
	)
	if err != nil {
		return s.wrapWrite("update question", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateQuestion retires a question from the rubric. The row and its
// answers stay; they just stop counting toward new totals and cutoffs.
func (s *BaseStore) DeactivateQuestion(id int64) error {
	query := s.Converter(`UPDATE scoring_questions SET is_active = FALSE WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate question: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

const adminColumns = `id, name, email, password_hash, is_active, last_login_at, created_at, updated_at`

func (s *BaseStore) ListAdmins() ([]models.Admin, error) {
	var admins []models.Admin
	err := s.DB.Select(&admins, `
		SELECT `+adminColumns+`
		FROM admins
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

func (s *BaseStore) GetAdmin(id int64) (*models.Admin, error) {
	var a models.Admin
	query := s.Converter(`SELECT ` + adminColumns + ` FROM admins WHERE id = ?`)

	err := s.DB.Get(&a, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

func (s *BaseStore) GetAdminByEmail(email string) (*models.Admin, error) {
	var a models.Admin
	query := s.Converter(`SELECT ` + adminColumns + ` FROM admins WHERE email = ?`)

	err := s.DB.Get(&a, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return &a, nil
}

func (s *BaseStore) UpdateAdmin(a *models.Admin) error {
	query := s.Converter(`
		UPDATE admins
		SET name = ?, email = ?, password_hash = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`)

	res, err := s.DB.Exec(query,
		a.Name, a.Email, a.PasswordHash, a.IsActive, time.Now().UTC(),
		a.ID,
	)
	if err != nil {
		return s.wrapWrite("update admin", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) TouchAdminLogin(id int64, at time.Time) error {
	query := s.Converter(`UPDATE admins SET last_login_at = ? WHERE id = ?`)
	if _, err := s.DB.Exec(query, at, id); err != nil {
		return fmt.Errorf("failed to touch admin login: %w", err)
	}
	return nil
}

const featureColumns = `id, code, title, summary, module, status, requested_by, tenant, tags, decision_notes, created_by_admin_id, updated_by_admin_id, created_at, updated_at`

func (s *BaseStore) ListFeatures() ([]models.FeatureRequest, error) {
	var features []models.FeatureRequest
	err := s.DB.Select(&features, `
		SELECT `+featureColumns+`
		FROM feature_requests
		ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	return features, nil
}

func (s *BaseStore) GetFeature(id int64) (*models.FeatureRequest, error) {
	var f models.FeatureRequest
	query := s.Converter(`SELECT ` + featureColumns + ` FROM feature_requests WHERE id = ?`)

	err := s.DB.Get(&f, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}
	return &f, nil
}

func (s *BaseStore) UpdateFeature(f *models.FeatureRequest) error {
	f.UpdatedAt = time.Now().UTC()
	query := s.Converter(`
		UPDATE feature_requests
		SET title = ?, summary = ?, module = ?, status = ?, requested_by = ?,
		    tenant = ?, tags = ?, decision_notes = ?, updated_by_admin_id = ?,
		    updated_at = ?
		WHERE id = ?
	`)

	res, err := s.DB.Exec(query,
		f.Title, f.Summary, f.Module, f.Status, f.RequestedBy,
		f.Tenant, f.Tags, f.DecisionNotes, f.UpdatedByAdminID,
		f.UpdatedAt,
		f.ID,
	)
	if err != nil {
		return s.wrapWrite("update feature", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFeature removes the feature; answers and decision logs go with it
// via ON DELETE CASCADE.
func (s *BaseStore) DeleteFeature(id int64) error {
	query := s.Converter(`DELETE FROM feature_requests WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete feature: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

const answerRowQuery = `
	SELECT
		ans.feature_id,
		ans.question_id,
		ans.admin_id,
		adm.name AS admin_name,
		adm.email AS admin_email,
		ans.value,
		q.max_score,
		q.is_negative,
		ans.updated_at
	FROM feature_score_answers ans
	JOIN scoring_questions q ON q.id = ans.question_id
	LEFT JOIN admins adm ON adm.id = ans.admin_id
	WHERE q.is_active = TRUE
`

func (s *BaseStore) ListFeatureAnswers(featureID int64) ([]AnswerRow, error) {
	query := s.Converter(answerRowQuery + `
		AND ans.feature_id = ?
		ORDER BY ans.id ASC
	`)

	var rows []AnswerRow
	if err := s.DB.Select(&rows, query, featureID); err != nil {
		return nil, fmt.Errorf("failed to list feature answers: %w", err)
	}
	return rows, nil
}

// ListAllAnswers loads the joined answer rows for every feature in one query
// so a listing never does per-feature round trips.
func (s *BaseStore) ListAllAnswers() ([]AnswerRow, error) {
	var rows []AnswerRow
	err := s.DB.Select(&rows, answerRowQuery+`
		ORDER BY ans.feature_id, ans.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return rows, nil
}

// UpsertAnswers writes one reviewer's answer batch in a single transaction.
// Rows are keyed on (feature_id, question_id, admin_id), so concurrent
// reviewers never touch each other's rows; a re-submit by the same reviewer
// overwrites their own value.
func (s *BaseStore) UpsertAnswers(featureID, adminID int64, answers []models.AnswerInput) error {
	if len(answers) == 0 {
		return nil
	}

	query := s.Converter(`
		INSERT INTO feature_score_answers (feature_id, question_id, admin_id, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (feature_id, question_id, admin_id) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
	`)

	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin answer upsert: %w", err)
	}

	now := time.Now().UTC()
	for _, a := range answers {
		if _, err := tx.Exec(query, featureID, a.QuestionID, adminID, a.Value, now, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert answer for question %d: %w", a.QuestionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answer upsert: %w", err)
	}
	return nil
}

func (s *BaseStore) AppendDecisionLog(entry *models.FeatureDecisionLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := s.Converter(`
		INSERT INTO feature_decision_logs (feature_id, admin_id, action, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	_, err := s.DB.Exec(query,
		entry.FeatureID, entry.AdminID, entry.Action, string(entry.Payload), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append decision log: %w", err)
	}
	return nil
}

func (s *BaseStore) ListDecisionLogs(featureID int64, limit int) ([]models.FeatureDecisionLog, error) {
	query := s.Converter(`
		SELECT id, feature_id, admin_id, action, payload, created_at
		FROM feature_decision_logs
		WHERE feature_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)

	var logs []models.FeatureDecisionLog
	if err := s.DB.Select(&logs, query, featureID, limit); err != nil {
		return nil, fmt.Errorf("failed to list decision logs: %w", err)
	}
	return logs, nil
}

func (s *BaseStore) ListModules() ([]models.FeatureModule, error) {
	var modules []models.FeatureModule
	err := s.DB.Select(&modules, `
		SELECT id, label, value, sort_order, is_active
		FROM feature_modules
		ORDER BY sort_order, label ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

func (s *BaseStore) UpdateModule(m *models.FeatureModule) error {
	query := s.Converter(`
		UPDATE feature_modules
		SET label = ?, value = ?, sort_order = ?, is_active = ?
		WHERE id = ?
	`)

	res, err := s.DB.Exec(query, m.Label, m.Value, m.SortOrder, m.IsActive, m.ID)
	if err != nil {
		return s.wrapWrite("update module", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) DeleteModule(id int64) error {
	query := s.Converter(`DELETE FROM feature_modules WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
