package models

import (
	"encoding/json"
	"time"
)

// FeatureDecisionLog is append-only audit trail per feature.
type FeatureDecisionLog struct {
	ID        int64           `db:"id" json:"id"`
	FeatureID int64           `db:"feature_id" json:"featureId"`
	AdminID   *int64          `db:"admin_id" json:"adminId,omitempty"`
	Action    string          `db:"action" json:"action"`
	Payload   json.RawMessage `db:"payload" json:"payload,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}
