package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type FeatureStatus string

const (
	StatusIntake   FeatureStatus = "intake"
	StatusTriage   FeatureStatus = "triage"
	StatusScoring  FeatureStatus = "scoring"
	StatusReady    FeatureStatus = "ready"
	StatusDeferred FeatureStatus = "deferred"
	StatusShipped  FeatureStatus = "shipped"
)

func (s FeatureStatus) Valid() bool {
	switch s {
	case StatusIntake, StatusTriage, StatusScoring, StatusReady, StatusDeferred, StatusShipped:
		return true
	}
	return false
}

// Tags is stored as a JSON array in a text column. Order is preserved.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

func (t *Tags) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
}

type FeatureRequest struct {
	ID               int64         `db:"id" json:"id"`
	Code             string        `db:"code" json:"code"`
	Title            string        `db:"title" json:"title" validate:"required"`
	Summary          string        `db:"summary" json:"summary"`
	Module           string        `db:"module" json:"module"`
	Status           FeatureStatus `db:"status" json:"status"`
	RequestedBy      string        `db:"requested_by" json:"requestedBy"`
	Tenant           string        `db:"tenant" json:"tenant"`
	Tags             Tags          `db:"tags" json:"tags"`
	DecisionNotes    string        `db:"decision_notes" json:"decisionNotes"`
	CreatedByAdminID *int64        `db:"created_by_admin_id" json:"createdByAdminId,omitempty"`
	UpdatedByAdminID *int64        `db:"updated_by_admin_id" json:"updatedByAdminId,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updatedAt"`
}

func (f *FeatureRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		return err
	}
	if !f.Status.Valid() {
		return fmt.Errorf("invalid status %q", f.Status)
	}
	return nil
}

// FeaturePatch is a partial update: nil fields are left untouched.
type FeaturePatch struct {
	Title         *string        `json:"title"`
	Summary       *string        `json:"summary"`
	Module        *string        `json:"module"`
	Status        *FeatureStatus `json:"status"`
	RequestedBy   *string        `json:"requestedBy"`
	Tenant        *string        `json:"tenant"`
	Tags          *Tags          `json:"tags"`
	DecisionNotes *string        `json:"decisionNotes"`
}

// NewFeatureCode generates codes of the form FR-<base36 millis, uppercase>.
func NewFeatureCode(t time.Time) string {
	return "FR-" + strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))
}
