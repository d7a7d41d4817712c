package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kardemumma/kardemumma/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name       string
		value      int
		maxScore   int
		isNegative bool
		expected   int
	}{
		{
			name:       "positive question keeps raw value",
			value:      3,
			maxScore:   5,
			isNegative: false,
			expected:   3,
		},
		{
			name:       "negative question inverts against max",
			value:      3,
			maxScore:   10,
			isNegative: true,
			expected:   7,
		},
		{
			name:       "negative question at max scores zero",
			value:      10,
			maxScore:   10,
			isNegative: true,
			expected:   0,
		},
		{
			name:       "zero on a negative question is full credit",
			value:      0,
			maxScore:   5,
			isNegative: true,
			expected:   5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.value, tc.maxScore, tc.isNegative))
		})
	}
}

func TestGrader_Cutoffs(t *testing.T) {
	grader := NewGrader(0.75, 0.55)

	questions := []models.ScoringQuestion{
		{ID: 1, MaxScore: 5},
		{ID: 2, MaxScore: 10},
	}

	c := grader.Cutoffs(questions)
	assert.Equal(t, 15.0, c.TotalPossible)
	assert.Equal(t, 11.25, c.High)
	assert.InDelta(t, 8.25, c.Med, 1e-9)

	t.Run("classification is inclusive at the cutoff", func(t *testing.T) {
		assert.Equal(t, PriorityHigh, c.Classify(11.25))
		assert.Equal(t, PriorityMedium, c.Classify(11.24))
		assert.Equal(t, PriorityMedium, c.Classify(8.25))
		assert.Equal(t, PriorityLow, c.Classify(8.24))
	})

	t.Run("empty rubric bands everything low", func(t *testing.T) {
		empty := grader.Cutoffs(nil)
		assert.Equal(t, PriorityLow, empty.Classify(0))
		assert.Equal(t, PriorityLow, empty.Classify(100))
	})

	t.Run("retiring a question shrinks the cutoffs", func(t *testing.T) {
		shrunk := grader.Cutoffs(questions[:1])
		assert.Equal(t, 5.0, shrunk.TotalPossible)
		assert.Less(t, shrunk.High, c.High)
	})
}

func TestGrader_Summarize(t *testing.T) {
	grader := NewGrader(0.75, 0.55)
	rubric := []models.ScoringQuestion{
		{ID: 1, MaxScore: 5, IsNegative: false},
		{ID: 2, MaxScore: 10, IsNegative: true},
	}
	cutoffs := grader.Cutoffs(rubric)

	answer := func(adminID int64, name string, value, maxScore int, neg bool, at time.Time) ReviewAnswer {
		return ReviewAnswer{
			AdminID:    int64Ptr(adminID),
			AdminName:  strPtr(name),
			Value:      value,
			MaxScore:   maxScore,
			IsNegative: neg,
			UpdatedAt:  at,
		}
	}

	t.Run("two reviewers aggregate by median", func(t *testing.T) {
		earlier := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		later := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)

		answers := []ReviewAnswer{
			answer(1, "Alice", 4, 5, false, earlier),  // 4
			answer(1, "Alice", 2, 10, true, later),    // 8 -> total 12
			answer(2, "Bob", 5, 5, false, earlier),    // 5
			answer(2, "Bob", 8, 10, true, earlier),    // 2 -> total 7
		}

		summary := grader.Summarize(answers, cutoffs)

		assert.Equal(t, 9.5, summary.Total)
		assert.Equal(t, PriorityMedium, summary.Priority)
		assert.Equal(t, later, *summary.LastReviewedAt)

		// sorted descending by total
		assert.Len(t, summary.ScoreTotals, 2)
		assert.Equal(t, "Alice", summary.ScoreTotals[0].AdminName)
		assert.Equal(t, 12, summary.ScoreTotals[0].Total)
		assert.Equal(t, "Bob", summary.ScoreTotals[1].AdminName)
		assert.Equal(t, 7, summary.ScoreTotals[1].Total)
	})

	t.Run("odd reviewer count takes the middle total", func(t *testing.T) {
		now := time.Now().UTC()
		answers := []ReviewAnswer{
			answer(1, "Alice", 10, 50, false, now),
			answer(2, "Bob", 20, 50, false, now),
			answer(3, "Carol", 30, 50, false, now),
		}

		summary := grader.Summarize(answers, cutoffs)
		assert.Equal(t, 20.0, summary.Total)
	})

	t.Run("zero reviewers", func(t *testing.T) {
		summary := grader.Summarize(nil, cutoffs)
		assert.Equal(t, 0.0, summary.Total)
		assert.Equal(t, PriorityLow, summary.Priority)
		assert.Empty(t, summary.ScoreTotals)
		assert.Nil(t, summary.LastReviewedAt)
	})

	t.Run("partial reviewers are not penalized", func(t *testing.T) {
		now := time.Now().UTC()
		answers := []ReviewAnswer{
			answer(1, "Alice", 5, 5, false, now), // answered one of two questions
		}
		summary := grader.Summarize(answers, cutoffs)
		assert.Equal(t, 5, summary.ScoreTotals[0].Total)
		assert.Equal(t, 5.0, summary.Total)
	})

	t.Run("unattributed answers share the legacy bucket", func(t *testing.T) {
		now := time.Now().UTC()
		answers := []ReviewAnswer{
			{Value: 3, MaxScore: 5, UpdatedAt: now},
			{Value: 2, MaxScore: 10, IsNegative: true, UpdatedAt: now},
		}
		summary := grader.Summarize(answers, cutoffs)
		assert.Len(t, summary.ScoreTotals, 1)
		assert.Equal(t, "Unattributed", summary.ScoreTotals[0].AdminName)
		assert.Nil(t, summary.ScoreTotals[0].AdminID)
		assert.Equal(t, 3+8, summary.ScoreTotals[0].Total)
	})

	t.Run("display name falls back to admin id", func(t *testing.T) {
		now := time.Now().UTC()
		answers := []ReviewAnswer{
			{AdminID: int64Ptr(42), Value: 3, MaxScore: 5, UpdatedAt: now},
		}
		summary := grader.Summarize(answers, cutoffs)
		assert.Equal(t, "Admin #42", summary.ScoreTotals[0].AdminName)
	})

	t.Run("even reviewer count averages the middle pair", func(t *testing.T) {
		now := time.Now().UTC()
		answers := []ReviewAnswer{
			answer(1, "Alice", 10, 50, false, now),
			answer(2, "Bob", 20, 50, false, now),
		}
		summary := grader.Summarize(answers, cutoffs)
		assert.Equal(t, 15.0, summary.Total)
	})
}

// A feature sitting exactly at a cutoff flips bands when the active rubric
// shrinks, with no answer changing.
func TestGrader_BandShiftsWithRubric(t *testing.T) {
	grader := NewGrader(0.75, 0.55)

	fullRubric := []models.ScoringQuestion{
		{ID: 1, MaxScore: 10},
		{ID: 2, MaxScore: 10},
	}
	// totalPossible 20 -> high cutoff 15
	full := grader.Cutoffs(fullRubric)

	now := time.Now().UTC()
	answers := []ReviewAnswer{
		{AdminID: int64Ptr(1), Value: 8, MaxScore: 10, UpdatedAt: now},
		{AdminID: int64Ptr(1), Value: 7, MaxScore: 10, UpdatedAt: now},
	}

	summary := grader.Summarize(answers, full)
	assert.Equal(t, 15.0, summary.Total)
	assert.Equal(t, PriorityHigh, summary.Priority)

	// Retire question 2: totalPossible 10, high cutoff 7.5, med 5.5. The
	// same reviewer now only counts their remaining active answer.
	shrunk := grader.Cutoffs(fullRubric[:1])
	remaining := answers[:1]

	summary = grader.Summarize(remaining, shrunk)
	assert.Equal(t, 8.0, summary.Total)
	assert.Equal(t, PriorityHigh, summary.Priority)

	// And a feature that was exactly medium on the full rubric drops low
	// once the rubric shrinks past it.
	atMedium := []ReviewAnswer{
		{AdminID: int64Ptr(1), Value: 11, MaxScore: 10, UpdatedAt: now},
	}
	assert.Equal(t, PriorityMedium, grader.Summarize(atMedium, full).Priority)

	tiny := grader.Cutoffs([]models.ScoringQuestion{{ID: 1, MaxScore: 2}})
	// high cutoff 1.5: the same total is high against a tiny rubric
	assert.Equal(t, PriorityHigh, grader.Summarize(atMedium, tiny).Priority)
}
