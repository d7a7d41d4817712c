package app

import (
	"github.com/kardemumma/kardemumma/internal/models"
)

// ActiveRubric returns the questions that currently participate in scoring,
// ordered by (group, sortOrder, id).
func (s *Service) ActiveRubric() ([]models.ScoringQuestion, error) {
	return s.Store.ListQuestions(false)
}

func (s *Service) FullRubric() ([]models.ScoringQuestion, error) {
	return s.Store.ListQuestions(true)
}

func (s *Service) CreateQuestion(q *models.ScoringQuestion) error {
	q.IsActive = true
	if err := asValidationError(q.Validate()); err != nil {
		return err
	}
	return s.Store.CreateQuestion(q)
}

// QuestionPatch is a partial question update: nil fields stay as stored.
// IsActive in particular only changes when the caller sends it, so a label
// rename can never retire a question as a side effect.
type QuestionPatch struct {
	Key        *string `json:"key"`
	Label      *string `json:"label"`
	Group      *string `json:"group"`
	HelpText   *string `json:"helpText"`
	MaxScore   *int    `json:"maxScore"`
	IsNegative *bool   `json:"isNegative"`
	SortOrder  *int    `json:"sortOrder"`
	IsActive   *bool   `json:"isActive"`
}

func (s *Service) UpdateQuestion(id int64, patch QuestionPatch) (*models.ScoringQuestion, error) {
	q, err := s.Store.GetQuestion(id)
	if err != nil {
		return nil, err
	}

	if patch.Key != nil {
		q.Key = *patch.Key
	}
	if patch.Label != nil {
		q.Label = *patch.Label
	}
	if patch.Group != nil {
		q.Group = *patch.Group
	}
	if patch.HelpText != nil {
		q.HelpText = patch.HelpText
	}
	if patch.MaxScore != nil {
		q.MaxScore = *patch.MaxScore
	}
	if patch.IsNegative != nil {
		q.IsNegative = *patch.IsNegative
	}
	if patch.SortOrder != nil {
		q.SortOrder = *patch.SortOrder
	}
	if patch.IsActive != nil {
		q.IsActive = *patch.IsActive
	}
	if err := asValidationError(q.Validate()); err != nil {
		return nil, err
	}

	if err := s.Store.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// RetireQuestion soft-deactivates a question. Its stored answers survive but
// stop counting toward totals and cutoffs, which can shift priority bands on
// the next read.
func (s *Service) RetireQuestion(id int64) error {
	return s.Store.DeactivateQuestion(id)
}
