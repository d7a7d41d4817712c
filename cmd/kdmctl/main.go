package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/kardemumma/kardemumma/internal/app"
	"github.com/kardemumma/kardemumma/internal/scoring"
	"github.com/kardemumma/kardemumma/internal/store"
)

// kdmctl renders read-only views of the rubric and the priority board for
// operators working from a terminal.
func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	// .env can override the configured DSN, handy against staging copies
	_ = godotenv.Load()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	dsn := config.Database.DSN
	if env := os.Getenv("KARDEMUMMA_DSN"); env != "" {
		dsn = env
	}

	featureStore, err := app.NewStore(dsn, config.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to init store: %v", err)
	}
	defer featureStore.Close()

	grader := scoring.NewGrader(config.Scoring.HighFraction, config.Scoring.MedFraction)

	switch flag.Arg(0) {
	case "rubric":
		showRubric(featureStore)
	case "board":
		showBoard(featureStore, grader)
	default:
		fmt.Fprintln(os.Stderr, "usage: kdmctl [-config path] rubric|board")
		os.Exit(2)
	}
}

func showRubric(featureStore store.FeatureStore) {
	questions, err := featureStore.ListQuestions(false)
	if err != nil {
		logger.Error.Fatalf("Failed to load rubric: %v", err)
	}

	var totalPossible int
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Label", "Group", "Max", "Polarity"})
	for _, q := range questions {
		polarity := "benefit"
		if q.IsNegative {
			polarity = "cost"
		}
		table.Append([]string{q.Key, q.Label, q.Group, strconv.Itoa(q.MaxScore), polarity})
		totalPossible += q.MaxScore
	}
	table.Render()

	color.New(color.Bold).Printf("Total possible: %d\n", totalPossible)
}

func showBoard(featureStore store.FeatureStore, grader *scoring.Grader) {
	questions, err := featureStore.ListQuestions(false)
	if err != nil {
		logger.Error.Fatalf("Failed to load rubric: %v", err)
	}
	cutoffs := grader.Cutoffs(questions)

	features, err := featureStore.ListFeatures()
	if err != nil {
		logger.Error.Fatalf("Failed to load features: %v", err)
	}

	rows, err := featureStore.ListAllAnswers()
	if err != nil {
		logger.Error.Fatalf("Failed to load answers: %v", err)
	}

	byFeature := make(map[int64][]store.AnswerRow)
	for _, row := range rows {
		byFeature[row.FeatureID] = append(byFeature[row.FeatureID], row)
	}

	type ranked struct {
		code, title, status string
		summary             scoring.Summary
	}
	board := make([]ranked, 0, len(features))
	for _, f := range features {
		answers := make([]scoring.ReviewAnswer, len(byFeature[f.ID]))
		for i, r := range byFeature[f.ID] {
			answers[i] = scoring.ReviewAnswer{
				AdminID:    r.AdminID,
				AdminName:  r.AdminName,
				AdminEmail: r.AdminEmail,
				Value:      r.Value,
				MaxScore:   r.MaxScore,
				IsNegative: r.IsNegative,
				UpdatedAt:  r.UpdatedAt,
			}
		}
		board = append(board, ranked{
			code:    f.Code,
			title:   f.Title,
			status:  string(f.Status),
			summary: grader.Summarize(answers, cutoffs),
		})
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].summary.Total > board[j].summary.Total
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Code", "Title", "Status", "Score", "Priority", "Reviewers"})
	for _, b := range board {
		table.Append([]string{
			b.code,
			b.title,
			b.status,
			strconv.FormatFloat(b.summary.Total, 'f', 2, 64),
			colorPriority(b.summary.Priority),
			strconv.Itoa(len(b.summary.ScoreTotals)),
		})
	}
	table.Render()

	color.New(color.Bold).Printf(
		"Cutoffs from live rubric: high >= %.2f, medium >= %.2f (total possible %.0f)\n",
		cutoffs.High, cutoffs.Med, cutoffs.TotalPossible,
	)
}

func colorPriority(p scoring.Priority) string {
	switch p {
	case scoring.PriorityHigh:
		return color.New(color.FgGreen, color.Bold).Sprint(p)
	case scoring.PriorityMedium:
		return color.New(color.FgYellow).Sprint(p)
	default:
		return color.New(color.FgWhite).Sprint(p)
	}
}
