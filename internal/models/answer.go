package models

import "time"

// FeatureScoreAnswer is one reviewer's answer to one rubric question for one
// feature. The (FeatureID, QuestionID, AdminID) triple is unique: reviewers
// never overwrite each other. AdminID is nullable only for rows that predate
// attributed scoring.
type FeatureScoreAnswer struct {
	ID         int64     `db:"id" json:"id"`
	FeatureID  int64     `db:"feature_id" json:"featureId"`
	QuestionID int64     `db:"question_id" json:"questionId"`
	AdminID    *int64    `db:"admin_id" json:"adminId,omitempty"`
	Value      int       `db:"value" json:"value"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// AnswerInput is a sanitized (questionId, value) pair ready for upsert.
type AnswerInput struct {
	QuestionID int64 `json:"questionId"`
	Value      int   `json:"value"`
}
