package main

import (
	"errors"
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/kardemumma/kardemumma/internal/app"
	"github.com/kardemumma/kardemumma/internal/models"
	"github.com/kardemumma/kardemumma/internal/store"
)

const (
	defaultAdminName  = "Admin"
	defaultAdminEmail = "admin@local.test"
)

func strPtr(s string) *string { return &s }

// defaultRubric is the starting question set: three benefit axes per group
// of customer impact and strategy, cost axes for engineering and ops.
var defaultRubric = []models.ScoringQuestion{
	{Key: "tenant_coverage", Label: "Tenant Coverage", Group: "Customer Impact", MaxScore: 5, SortOrder: 10},
	{Key: "user_coverage", Label: "User Coverage", Group: "Customer Impact", MaxScore: 5, SortOrder: 20},
	{Key: "revenue_retention", Label: "Revenue / Retention", Group: "Customer Impact", MaxScore: 5, SortOrder: 30},

	{Key: "time_required", Label: "Time Required", Group: "Engineering Cost", HelpText: strPtr("Long time = lower value"), MaxScore: 10, IsNegative: true, SortOrder: 40},
	{Key: "build_complexity", Label: "Build Complexity", Group: "Engineering Cost", MaxScore: 5, IsNegative: true, SortOrder: 50},
	{Key: "maintenance_burden", Label: "Maintenance Burden", Group: "Engineering Cost", MaxScore: 5, IsNegative: true, SortOrder: 60},

	{Key: "performance_load", Label: "Performance / Load", Group: "Ops & Infrastructure", MaxScore: 5, IsNegative: true, SortOrder: 70},
	{Key: "support_impact", Label: "Support Impact", Group: "Ops & Infrastructure", MaxScore: 5, IsNegative: true, SortOrder: 80},
	{Key: "security_compliance", Label: "Security / Compliance", Group: "Ops & Infrastructure", MaxScore: 5, IsNegative: true, SortOrder: 90},

	{Key: "roadmap_fit", Label: "Roadmap Fit", Group: "Strategic Alignment", MaxScore: 5, SortOrder: 100},
	{Key: "differentiation", Label: "Differentiation", Group: "Strategic Alignment", MaxScore: 5, SortOrder: 110},
	{Key: "multitenant_reuse", Label: "Multi-Tenant Reuse", Group: "Strategic Alignment", MaxScore: 5, SortOrder: 120},
}

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	var adminPassword = flag.String("admin-password", "", "Password for the default admin (skipped when empty and admin exists)")
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	featureStore, err := app.NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to init store: %v", err)
	}
	defer featureStore.Close()

	seedRubric(featureStore)
	seedAdmin(featureStore, *adminPassword)
}

// seedRubric upserts questions by key so re-running the seed is safe.
func seedRubric(featureStore store.FeatureStore) {
	existing, err := featureStore.ListQuestions(true)
	if err != nil {
		logger.Error.Fatalf("Failed to list questions: %v", err)
	}

	byKey := make(map[string]models.ScoringQuestion, len(existing))
	for _, q := range existing {
		byKey[q.Key] = q
	}

	for _, q := range defaultRubric {
		q.IsActive = true
		if current, ok := byKey[q.Key]; ok {
			q.ID = current.ID
			if err := featureStore.UpdateQuestion(&q); err != nil {
				logger.Error.Fatalf("Failed to update question %s: %v", q.Key, err)
			}
			continue
		}
		if err := featureStore.CreateQuestion(&q); err != nil {
			logger.Error.Fatalf("Failed to create question %s: %v", q.Key, err)
		}
	}
	logger.Info.Printf("Seeded %d rubric questions", len(defaultRubric))
}

func seedAdmin(featureStore store.FeatureStore, password string) {
	if _, err := featureStore.GetAdminByEmail(defaultAdminEmail); err == nil {
		logger.Info.Printf("Default admin already exists: %s", defaultAdminEmail)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		logger.Error.Fatalf("Failed to check default admin: %v", err)
	}

	if password == "" {
		logger.Error.Fatalf("Default admin missing; pass -admin-password to create it")
	}

	hash, err := app.HashPassword(password)
	if err != nil {
		logger.Error.Fatalf("Failed to hash password: %v", err)
	}

	admin := &models.Admin{
		Name:         defaultAdminName,
		Email:        defaultAdminEmail,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := featureStore.CreateAdmin(admin); err != nil {
		logger.Error.Fatalf("Failed to create default admin: %v", err)
	}
	logger.Info.Printf("Created default admin %s (id=%d)", admin.Email, admin.ID)
}
