package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple label", "Billing", "billing"},
		{"spaces become dashes", "Customer Portal", "customer-portal"},
		{"punctuation collapses", "Billing & Invoicing!!", "billing-invoicing"},
		{"leading and trailing junk trimmed", "  --Reports--  ", "reports"},
		{"all junk falls back", "???", "module"},
		{"empty falls back", "", "module"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slugify(tc.input))
		})
	}
}

func TestNewFeatureCode(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	code := NewFeatureCode(at)

	assert.True(t, strings.HasPrefix(code, "FR-"))
	assert.Equal(t, strings.ToUpper(code), code)

	// later timestamps sort after earlier ones at equal length
	later := NewFeatureCode(at.Add(time.Second))
	assert.NotEqual(t, code, later)
	assert.Greater(t, later, code)
}

func TestFeatureStatusValid(t *testing.T) {
	for _, s := range []FeatureStatus{StatusIntake, StatusTriage, StatusScoring, StatusReady, StatusDeferred, StatusShipped} {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}
	assert.False(t, FeatureStatus("someday").Valid())
	assert.False(t, FeatureStatus("").Valid())
}

func TestTagsRoundTrip(t *testing.T) {
	t.Run("value encodes json", func(t *testing.T) {
		v, err := Tags{"export", "reporting"}.Value()
		require.NoError(t, err)
		assert.JSONEq(t, `["export","reporting"]`, v.(string))
	})

	t.Run("nil encodes empty array", func(t *testing.T) {
		v, err := Tags(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	t.Run("scan accepts string and bytes", func(t *testing.T) {
		var tags Tags
		require.NoError(t, tags.Scan(`["export"]`))
		assert.Equal(t, Tags{"export"}, tags)

		require.NoError(t, tags.Scan([]byte(`["a","b"]`)))
		assert.Equal(t, Tags{"a", "b"}, tags)
	})

	t.Run("scan of null is empty", func(t *testing.T) {
		var tags Tags
		require.NoError(t, tags.Scan(nil))
		assert.Equal(t, Tags{}, tags)
	})
}

func TestScoringQuestionValidate(t *testing.T) {
	q := ScoringQuestion{Key: "reach", Label: "Reach", Group: "impact", MaxScore: 5}
	assert.NoError(t, q.Validate())

	q.MaxScore = 0
	assert.Error(t, q.Validate())

	q.MaxScore = 5
	q.Key = ""
	assert.Error(t, q.Validate())
}
