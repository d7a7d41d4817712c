// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardemumma/kardemumma/internal/models"
	"github.com/kardemumma/kardemumma/internal/store"
)

// setupTestDB creates an in-memory SQLite database with the real migrations
// applied, so tests exercise the same schema the server runs on.
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store   *SQLiteStore
	admin   models.Admin
	feature models.FeatureRequest
	rubric  []models.ScoringQuestion
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)

	admin := models.Admin{
		Name:         "Alice",
		Email:        "alice@example.test",
		PasswordHash: "$2a$10$notarealhash",
		IsActive:     true,
	}
	require.NoError(t, s.CreateAdmin(&admin), "Failed to create admin")

	rubric := []models.ScoringQuestion{
		{Key: "reach", Label: "How many tenants ask for this?", Group: "impact", MaxScore: 5, SortOrder: 10, IsActive: true},
		{Key: "effort", Label: "How much work is this?", Group: "cost", MaxScore: 10, IsNegative: true, SortOrder: 20, IsActive: true},
	}
	for i := range rubric {
		require.NoError(t, s.CreateQuestion(&rubric[i]), "Failed to create question")
	}

	feature := models.FeatureRequest{
		Code:   "FR-TEST1",
		Title:  "Bulk export",
		Status: models.StatusTriage,
		Tags:   models.Tags{"export"},
	}
	require.NoError(t, s.CreateFeature(&feature), "Failed to create feature")

	return &testData{
		store:   s,
		admin:   admin,
		feature: feature,
		rubric:  rubric,
	}, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestQuestionOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get question", func(t *testing.T) {
		got, err := td.store.GetQuestion(td.rubric[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "reach", got.Key)
		assert.Equal(t, 5, got.MaxScore)
		assert.True(t, got.IsActive)
	})

	t.Run("duplicate key conflicts", func(t *testing.T) {
		dup := models.ScoringQuestion{Key: "reach", Label: "dup", Group: "impact", MaxScore: 3, IsActive: true}
		err := td.store.CreateQuestion(&dup)
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("deactivate hides from active listing", func(t *testing.T) {
		require.NoError(t, td.store.DeactivateQuestion(td.rubric[1].ID))

		active, err := td.store.ListQuestions(false)
		require.NoError(t, err)
		assert.Len(t, active, 1)
		assert.Equal(t, "reach", active[0].Key)

		all, err := td.store.ListQuestions(true)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("deactivate missing question", func(t *testing.T) {
		err := td.store.DeactivateQuestion(9999)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update question", func(t *testing.T) {
		q := td.rubric[0]
		q.MaxScore = 8
		q.Label = "Reach across tenants"
		require.NoError(t, td.store.UpdateQuestion(&q))

		got, err := td.store.GetQuestion(q.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.MaxScore)
		assert.Equal(t, "Reach across tenants", got.Label)
	})
}

func TestAdminOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get by email", func(t *testing.T) {
		got, err := td.store.GetAdminByEmail("alice@example.test")
		require.NoError(t, err)
		assert.Equal(t, td.admin.ID, got.ID)
		assert.Equal(t, "Alice", got.Name)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := td.store.GetAdminByEmail("nobody@example.test")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		dup := models.Admin{Name: "Imposter", Email: "alice@example.test", PasswordHash: "x", IsActive: true}
		err := td.store.CreateAdmin(&dup)
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("touch login", func(t *testing.T) {
		at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
		require.NoError(t, td.store.TouchAdminLogin(td.admin.ID, at))

		got, err := td.store.GetAdmin(td.admin.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLoginAt)
		assert.WithinDuration(t, at, *got.LastLoginAt, time.Second)
	})
}

func TestFeatureOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get feature", func(t *testing.T) {
		got, err := td.store.GetFeature(td.feature.ID)
		require.NoError(t, err)
		assert.Equal(t, "FR-TEST1", got.Code)
		assert.Equal(t, models.Tags{"export"}, got.Tags)
	})

	t.Run("duplicate code conflicts", func(t *testing.T) {
		dup := models.FeatureRequest{Code: "FR-TEST1", Title: "dup", Status: models.StatusIntake, Tags: models.Tags{}}
		err := td.store.CreateFeature(&dup)
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("update feature", func(t *testing.T) {
		f, err := td.store.GetFeature(td.feature.ID)
		require.NoError(t, err)

		f.Status = models.StatusReady
		f.DecisionNotes = "ship it next sprint"
		require.NoError(t, td.store.UpdateFeature(f))

		got, err := td.store.GetFeature(td.feature.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusReady, got.Status)
		assert.Equal(t, "ship it next sprint", got.DecisionNotes)
	})

	t.Run("update missing feature", func(t *testing.T) {
		missing := td.feature
		missing.ID = 9999
		err := td.store.UpdateFeature(&missing)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete cascades to answers and logs", func(t *testing.T) {
		answers := []models.AnswerInput{{QuestionID: td.rubric[0].ID, Value: 3}}
		require.NoError(t, td.store.UpsertAnswers(td.feature.ID, td.admin.ID, answers))
		require.NoError(t, td.store.AppendDecisionLog(&models.FeatureDecisionLog{
			FeatureID: td.feature.ID,
			Action:    "feature.created",
		}))

		require.NoError(t, td.store.DeleteFeature(td.feature.ID))

		_, err := td.store.GetFeature(td.feature.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		rows, err := td.store.ListAllAnswers()
		require.NoError(t, err)
		assert.Empty(t, rows)

		logs, err := td.store.ListDecisionLogs(td.feature.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})
}

func TestAnswerOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("upsert and list", func(t *testing.T) {
		answers := []models.AnswerInput{
			{QuestionID: td.rubric[0].ID, Value: 4},
			{QuestionID: td.rubric[1].ID, Value: 2},
		}
		require.NoError(t, td.store.UpsertAnswers(td.feature.ID, td.admin.ID, answers))

		rows, err := td.store.ListFeatureAnswers(td.feature.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 4, rows[0].Value)
		assert.Equal(t, 5, rows[0].MaxScore)
		assert.False(t, rows[0].IsNegative)
		assert.True(t, rows[1].IsNegative)
		require.NotNil(t, rows[0].AdminName)
		assert.Equal(t, "Alice", *rows[0].AdminName)
	})

	t.Run("resubmit overwrites same reviewer's row", func(t *testing.T) {
		answers := []models.AnswerInput{{QuestionID: td.rubric[0].ID, Value: 1}}
		require.NoError(t, td.store.UpsertAnswers(td.feature.ID, td.admin.ID, answers))

		rows, err := td.store.ListFeatureAnswers(td.feature.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, r := range rows {
			if r.QuestionID == td.rubric[0].ID {
				assert.Equal(t, 1, r.Value)
			}
		}
	})

	t.Run("second reviewer gets their own rows", func(t *testing.T) {
		bob := models.Admin{Name: "Bob", Email: "bob@example.test", PasswordHash: "x", IsActive: true}
		require.NoError(t, td.store.CreateAdmin(&bob))

		answers := []models.AnswerInput{{QuestionID: td.rubric[0].ID, Value: 5}}
		require.NoError(t, td.store.UpsertAnswers(td.feature.ID, bob.ID, answers))

		rows, err := td.store.ListFeatureAnswers(td.feature.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("retired questions drop out of the join", func(t *testing.T) {
		require.NoError(t, td.store.DeactivateQuestion(td.rubric[1].ID))

		rows, err := td.store.ListFeatureAnswers(td.feature.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		for _, r := range rows {
			assert.Equal(t, td.rubric[0].ID, r.QuestionID)
		}
	})
}

// Only unique violations map to ErrConflict; other constraint classes stay
// plain errors so they surface as 500s, not 409s.
func TestConstraintMapping(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("check violation is not a conflict", func(t *testing.T) {
		bad := models.ScoringQuestion{Key: "bogus", Label: "Bogus", Group: "impact", MaxScore: 0, IsActive: true}
		err := td.store.CreateQuestion(&bad)
		require.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrConflict)
	})

	t.Run("fk violation is not a conflict", func(t *testing.T) {
		f, err := td.store.GetFeature(td.feature.ID)
		require.NoError(t, err)

		missing := int64(9999)
		f.UpdatedByAdminID = &missing
		err = td.store.UpdateFeature(f)
		require.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrConflict)
	})

	t.Run("unique violation still is", func(t *testing.T) {
		dup := models.ScoringQuestion{Key: "reach", Label: "dup", Group: "impact", MaxScore: 3, IsActive: true}
		err := td.store.CreateQuestion(&dup)
		assert.ErrorIs(t, err, store.ErrConflict)
	})
}

func TestDecisionLogOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := models.FeatureDecisionLog{
			FeatureID: td.feature.ID,
			AdminID:   &td.admin.ID,
			Action:    "feature.updated",
			Payload:   []byte(`{"revision":` + string(rune('0'+i)) + `}`),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, td.store.AppendDecisionLog(&entry))
	}

	t.Run("newest first with limit", func(t *testing.T) {
		logs, err := td.store.ListDecisionLogs(td.feature.ID, 3)
		require.NoError(t, err)
		require.Len(t, logs, 3)
		assert.WithinDuration(t, base.Add(4*time.Minute), logs[0].CreatedAt, time.Second)
		assert.WithinDuration(t, base.Add(2*time.Minute), logs[2].CreatedAt, time.Second)
	})

	t.Run("other feature sees nothing", func(t *testing.T) {
		logs, err := td.store.ListDecisionLogs(9999, 10)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})
}

func TestModuleOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	billing := models.FeatureModule{Label: "Billing", Value: "billing", SortOrder: 10, IsActive: true}
	require.NoError(t, td.store.CreateModule(&billing))

	t.Run("duplicate value conflicts", func(t *testing.T) {
		dup := models.FeatureModule{Label: "Billing 2", Value: "billing", SortOrder: 20, IsActive: true}
		err := td.store.CreateModule(&dup)
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("list ordering", func(t *testing.T) {
		reports := models.FeatureModule{Label: "Reports", Value: "reports", SortOrder: 5, IsActive: true}
		require.NoError(t, td.store.CreateModule(&reports))

		modules, err := td.store.ListModules()
		require.NoError(t, err)
		require.Len(t, modules, 2)
		assert.Equal(t, "reports", modules[0].Value)
		assert.Equal(t, "billing", modules[1].Value)
	})

	t.Run("update and delete", func(t *testing.T) {
		billing.Label = "Billing & Invoicing"
		require.NoError(t, td.store.UpdateModule(&billing))

		require.NoError(t, td.store.DeleteModule(billing.ID))
		err := td.store.DeleteModule(billing.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
