// internal/scoring/engine.go
package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kardemumma/kardemumma/internal/models"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	DefaultHighFraction = 0.75
	DefaultMedFraction  = 0.55
)

// Grader holds the banding policy. Aggregation is the median of per-reviewer
// totals; the cutoff fractions are applied to the live rubric's total
// possible score, never to a cached one.
type Grader struct {
	HighFraction float64 `toml:"high_cutoff_fraction"`
	MedFraction  float64 `toml:"med_cutoff_fraction"`
}

func NewGrader(highFraction, medFraction float64) *Grader {
	if highFraction <= 0 {
		highFraction = DefaultHighFraction
	}
	if medFraction <= 0 {
		medFraction = DefaultMedFraction
	}
	return &Grader{
		HighFraction: highFraction,
		MedFraction:  medFraction,
	}
}

// Cutoffs are derived from the active rubric at read time. Retiring or adding
// a question changes TotalPossible and can move features between bands
// without any answer changing.
type Cutoffs struct {
	TotalPossible float64 `json:"totalPossible"`
	High          float64 `json:"highCutoff"`
	Med           float64 `json:"medCutoff"`
}

func (g *Grader) Cutoffs(active []models.ScoringQuestion) Cutoffs {
	var total float64
	for _, q := range active {
		total += float64(q.MaxScore)
	}
	return Cutoffs{
		TotalPossible: total,
		High:          total * g.HighFraction,
		Med:           total * g.MedFraction,
	}
}

func (c Cutoffs) Classify(total float64) Priority {
	switch {
	case c.TotalPossible > 0 && total >= c.High:
		return PriorityHigh
	case c.TotalPossible > 0 && total >= c.Med:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Normalize maps an answer onto the higher-is-better scale. Cost-like
// questions (isNegative) invert against maxScore so benefit and cost axes
// sum meaningfully.
func Normalize(value, maxScore int, isNegative bool) int {
	if isNegative {
		return maxScore - value
	}
	return value
}

// ReviewAnswer is an answer joined with its question's live scoring metadata
// and its author's identity. MaxScore and IsNegative are resolved at
// computation time, never denormalized onto the stored row.
type ReviewAnswer struct {
	AdminID    *int64
	AdminName  *string
	AdminEmail *string
	Value      int
	MaxScore   int
	IsNegative bool
	UpdatedAt  time.Time
}

type AdminTotal struct {
	AdminID    *int64  `json:"adminId"`
	AdminName  string  `json:"adminName"`
	AdminEmail *string `json:"adminEmail"`
	Total      int     `json:"total"`
}

type Summary struct {
	ScoreTotals    []AdminTotal `json:"scoreTotals"`
	Total          float64      `json:"total"`
	Priority       Priority     `json:"priority"`
	LastReviewedAt *time.Time   `json:"lastReviewedAt"`
}

// legacy bucket for answers that predate attributed scoring
const unattributedKey = "legacy"

// Summarize is a pure function of the answer snapshot and the cutoffs built
// from the active rubric. It buckets answers by author, sums each reviewer's
// normalized values, aggregates across reviewers with the median (rounded to
// two decimals), and bands the result. A reviewer who skipped questions is
// summed over what they answered, not penalized for the rest.
func (g *Grader) Summarize(answers []ReviewAnswer, c Cutoffs) Summary {
	totals := make(map[string]*AdminTotal)
	var order []string
	var lastReviewed *time.Time

	for _, a := range answers {
		if lastReviewed == nil || a.UpdatedAt.After(*lastReviewed) {
			t := a.UpdatedAt
			lastReviewed = &t
		}

		key := unattributedKey
		if a.AdminID != nil {
			key = fmt.Sprintf("admin:%d", *a.AdminID)
		}

		entry, ok := totals[key]
		if !ok {
			entry = &AdminTotal{
				AdminID:    a.AdminID,
				AdminName:  displayName(a),
				AdminEmail: a.AdminEmail,
			}
			totals[key] = entry
			order = append(order, key)
		}
		entry.Total += Normalize(a.Value, a.MaxScore, a.IsNegative)
	}

	scoreTotals := make([]AdminTotal, 0, len(order))
	for _, key := range order {
		scoreTotals = append(scoreTotals, *totals[key])
	}
	sort.SliceStable(scoreTotals, func(i, j int) bool {
		return scoreTotals[i].Total > scoreTotals[j].Total
	})

	perReviewer := make([]int, len(scoreTotals))
	for i, t := range scoreTotals {
		perReviewer[i] = t.Total
	}
	aggregate := round2(median(perReviewer))

	return Summary{
		ScoreTotals:    scoreTotals,
		Total:          aggregate,
		Priority:       c.Classify(aggregate),
		LastReviewedAt: lastReviewed,
	}
}

func displayName(a ReviewAnswer) string {
	if a.AdminName != nil && *a.AdminName != "" {
		return *a.AdminName
	}
	if a.AdminID != nil {
		return fmt.Sprintf("Admin #%d", *a.AdminID)
	}
	return "Unattributed"
}

// median over per-reviewer totals: middle element for odd n, mean of the two
// middle elements for even n, 0 for no reviewers.
func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
