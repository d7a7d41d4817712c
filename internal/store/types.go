package store

import "time"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

// AnswerRow is an answer joined with its question's live scoring metadata and
// its author. MaxScore and IsNegative come from the questions table on every
// read; they are never denormalized onto the answer.
type AnswerRow struct {
	FeatureID  int64     `db:"feature_id"`
	QuestionID int64     `db:"question_id"`
	AdminID    *int64    `db:"admin_id"`
	AdminName  *string   `db:"admin_name"`
	AdminEmail *string   `db:"admin_email"`
	Value      int       `db:"value"`
	MaxScore   int       `db:"max_score"`
	IsNegative bool      `db:"is_negative"`
	UpdatedAt  time.Time `db:"updated_at"`
}
