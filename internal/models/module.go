package models

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// FeatureModule is a product area features are filed under.
type FeatureModule struct {
	ID        int64  `db:"id" json:"id"`
	Label     string `db:"label" json:"label" validate:"required"`
	Value     string `db:"value" json:"value" validate:"required"`
	SortOrder int    `db:"sort_order" json:"sortOrder"`
	IsActive  bool   `db:"is_active" json:"isActive"`
}

func (m *FeatureModule) Validate() error {
	validate := validator.New()
	return validate.Struct(m)
}

// Slugify derives a module value from its label: lowercase, runs of
// non-alphanumerics collapsed to single dashes.
func Slugify(input string) string {
	s := slugCleanup.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "module"
	}
	return s
}
