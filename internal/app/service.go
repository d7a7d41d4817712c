package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/kardemumma/kardemumma/internal/models"
	"github.com/kardemumma/kardemumma/internal/scoring"
	"github.com/kardemumma/kardemumma/internal/store"
)

// decisionLogLimit bounds how much audit history rides along on a single get.
const decisionLogLimit = 50

type Service struct {
	Config *Config
	Store  store.FeatureStore
	Auth   *Auth
	Grader *scoring.Grader
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	featureStore, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return &Service{
		Config: config,
		Store:  featureStore,
		Auth:   auth,
		Grader: scoring.NewGrader(config.Scoring.HighFraction, config.Scoring.MedFraction),
	}, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}

// FeatureWithScore is a feature plus its live score summary. The summary is
// recomputed from current answers and the current rubric on every read; it
// is never persisted.
type FeatureWithScore struct {
	models.FeatureRequest
	scoring.Summary
	Logs []models.FeatureDecisionLog `json:"logs,omitempty"`
}

func (s *Service) cutoffs() (scoring.Cutoffs, error) {
	active, err := s.Store.ListQuestions(false)
	if err != nil {
		return scoring.Cutoffs{}, fmt.Errorf("failed to load active rubric: %w", err)
	}
	return s.Grader.Cutoffs(active), nil
}

func toReviewAnswers(rows []store.AnswerRow) []scoring.ReviewAnswer {
	answers := make([]scoring.ReviewAnswer, len(rows))
	for i, r := range rows {
		answers[i] = scoring.ReviewAnswer{
			AdminID:    r.AdminID,
			AdminName:  r.AdminName,
			AdminEmail: r.AdminEmail,
			Value:      r.Value,
			MaxScore:   r.MaxScore,
			IsNegative: r.IsNegative,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return answers
}

// ListFeatures loads every feature with its score summary. The rubric is
// read once for the whole batch: cutoffs are shared across the listing, and
// all answer rows come back in a single joined query.
func (s *Service) ListFeatures() ([]FeatureWithScore, error) {
	cutoffs, err := s.cutoffs()
	if err != nil {
		return nil, err
	}

	features, err := s.Store.ListFeatures()
	if err != nil {
		return nil, err
	}

	rows, err := s.Store.ListAllAnswers()
	if err != nil {
		return nil, err
	}

	byFeature := make(map[int64][]store.AnswerRow)
	for _, row := range rows {
		byFeature[row.FeatureID] = append(byFeature[row.FeatureID], row)
	}

	result := make([]FeatureWithScore, len(features))
	for i, f := range features {
		result[i] = FeatureWithScore{
			FeatureRequest: f,
			Summary:        s.Grader.Summarize(toReviewAnswers(byFeature[f.ID]), cutoffs),
		}
	}
	return result, nil
}

// GetFeature loads one feature with its score summary and the most recent
// decision-log entries.
func (s *Service) GetFeature(id int64) (*FeatureWithScore, error) {
	feature, err := s.Store.GetFeature(id)
	if err != nil {
		return nil, err
	}

	cutoffs, err := s.cutoffs()
	if err != nil {
		return nil, err
	}

	rows, err := s.Store.ListFeatureAnswers(id)
	if err != nil {
		return nil, err
	}

	logs, err := s.Store.ListDecisionLogs(id, decisionLogLimit)
	if err != nil {
		return nil, err
	}

	return &FeatureWithScore{
		FeatureRequest: *feature,
		Summary:        s.Grader.Summarize(toReviewAnswers(rows), cutoffs),
		Logs:           logs,
	}, nil
}

func (s *Service) CreateFeature(code string, patch models.FeaturePatch, admin *AdminContext) (*FeatureWithScore, error) {
	now := time.Now().UTC()
	if code == "" {
		code = models.NewFeatureCode(now)
	}

	feature := &models.FeatureRequest{
		Code:      code,
		Title:     "New feature request",
		Status:    models.StatusIntake,
		Tags:      models.Tags{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if admin != nil {
		feature.CreatedByAdminID = &admin.ID
		feature.UpdatedByAdminID = &admin.ID
	}
	if err := applyPatch(feature, patch); err != nil {
		return nil, err
	}
	if err := asValidationError(feature.Validate()); err != nil {
		return nil, err
	}

	if err := s.Store.CreateFeature(feature); err != nil {
		return nil, err
	}

	s.appendLog(feature.ID, admin, "feature.created", map[string]interface{}{
		"code": feature.Code, "title": feature.Title,
	})

	return s.GetFeature(feature.ID)
}

// UpdateFeature applies a partial patch: nil fields are no-ops, never
// overwritten with zero values.
func (s *Service) UpdateFeature(id int64, patch models.FeaturePatch, admin *AdminContext) (*FeatureWithScore, error) {
	feature, err := s.Store.GetFeature(id)
	if err != nil {
		return nil, err
	}

	if err := applyPatch(feature, patch); err != nil {
		return nil, err
	}
	if admin != nil {
		feature.UpdatedByAdminID = &admin.ID
	}
	if err := asValidationError(feature.Validate()); err != nil {
		return nil, err
	}

	if err := s.Store.UpdateFeature(feature); err != nil {
		return nil, err
	}

	s.appendLog(id, admin, "feature.updated", patch)

	return s.GetFeature(id)
}

func (s *Service) DeleteFeature(id int64) error {
	return s.Store.DeleteFeature(id)
}

func applyPatch(f *models.FeatureRequest, patch models.FeaturePatch) error {
	if patch.Title != nil {
		f.Title = *patch.Title
	}
	if patch.Summary != nil {
		f.Summary = *patch.Summary
	}
	if patch.Module != nil {
		f.Module = *patch.Module
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return invalidField("status", fmt.Sprintf("unknown status %q", *patch.Status))
		}
		f.Status = *patch.Status
	}
	if patch.RequestedBy != nil {
		f.RequestedBy = *patch.RequestedBy
	}
	if patch.Tenant != nil {
		f.Tenant = *patch.Tenant
	}
	if patch.Tags != nil {
		f.Tags = *patch.Tags
	}
	if patch.DecisionNotes != nil {
		f.DecisionNotes = *patch.DecisionNotes
	}
	return nil
}

// RawAnswer is one entry of an answer submission before sanitization. Both
// fields tolerate any JSON type at the decode boundary: a batch with a bad
// value in one entry must not fail the other entries.
type RawAnswer struct {
	QuestionID json.Number `json:"questionId"`
	Value      json.Number `json:"value"`
}

func (r *RawAnswer) UnmarshalJSON(data []byte) error {
	var fields struct {
		QuestionID json.RawMessage `json:"questionId"`
		Value      json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.QuestionID = coerceNumber(fields.QuestionID)
	r.Value = coerceNumber(fields.Value)
	return nil
}

// coerceNumber pulls a numeric token out of arbitrary JSON. Numbers and
// quoted numbers pass through; anything else (bool, null, object, missing)
// comes back empty and falls out as 0 or a dropped row in SanitizeAnswers.
func coerceNumber(raw json.RawMessage) json.Number {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return json.Number(s)
	}
	return ""
}

// SanitizeAnswers floors values at 0 (non-numeric counts as 0) and drops
// entries whose questionId is not an integer. Values above the question's
// maxScore are stored as-is: maxScore bounds the UI slider, not the column.
func SanitizeAnswers(raw []RawAnswer) []models.AnswerInput {
	sanitized := make([]models.AnswerInput, 0, len(raw))
	for _, r := range raw {
		questionID, err := r.QuestionID.Int64()
		if err != nil {
			continue
		}

		value := 0
		if v, err := r.Value.Int64(); err == nil {
			value = int(v)
		} else if f, err := r.Value.Float64(); err == nil {
			value = int(f)
		}
		if value < 0 {
			value = 0
		}

		sanitized = append(sanitized, models.AnswerInput{
			QuestionID: questionID,
			Value:      value,
		})
	}
	return sanitized
}

// UpsertAnswers writes one reviewer's batch and returns the recomputed
// feature, so the caller always sees a consistent post-write view. The batch
// is applied atomically; other reviewers' rows are untouched by design of
// the (feature, question, admin) key.
func (s *Service) UpsertAnswers(featureID int64, admin *AdminContext, raw []RawAnswer) (*FeatureWithScore, error) {
	if admin == nil || admin.ID == 0 {
		return nil, ErrAuthRequired
	}

	if _, err := s.Store.GetFeature(featureID); err != nil {
		return nil, err
	}

	answers := SanitizeAnswers(raw)
	if len(answers) > 0 {
		if err := s.Store.UpsertAnswers(featureID, admin.ID, answers); err != nil {
			return nil, err
		}
		s.appendLog(featureID, admin, "answers.updated", answers)
	}

	return s.GetFeature(featureID)
}

// appendLog records an audit entry. Log failures never fail the request.
func (s *Service) appendLog(featureID int64, admin *AdminContext, action string, payload interface{}) {
	entry := &models.FeatureDecisionLog{
		FeatureID: featureID,
		Action:    action,
	}
	if admin != nil {
		entry.AdminID = &admin.ID
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			entry.Payload = data
		}
	}
	if err := s.Store.AppendDecisionLog(entry); err != nil {
		logger.Error.Printf("Failed to append decision log %s for feature %d: %v", action, featureID, err)
	}
}
