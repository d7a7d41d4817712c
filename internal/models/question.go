package models

import (
	"github.com/go-playground/validator/v10"
)

// ScoringQuestion is one axis of the rubric. Questions are never hard-deleted:
// retirement flips IsActive so historical answers keep their referent.
type ScoringQuestion struct {
	ID         int64   `db:"id" json:"id"`
	Key        string  `db:"key" json:"key" validate:"required,max=64"`
	Label      string  `db:"label" json:"label" validate:"required"`
	Group      string  `db:"question_group" json:"group"`
	HelpText   *string `db:"help_text" json:"helpText,omitempty"`
	MaxScore   int     `db:"max_score" json:"maxScore" validate:"required,gt=0"`
	IsNegative bool    `db:"is_negative" json:"isNegative"`
	SortOrder  int     `db:"sort_order" json:"sortOrder"`
	IsActive   bool    `db:"is_active" json:"isActive"`
}

func (q *ScoringQuestion) Validate() error {
	validate := validator.New()
	return validate.Struct(q)
}
