package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"taskboard/internal/client/session"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
)

var (
	seedStatuses   = []string{"todo", "in-progress", "review", "done"}
	seedPriorities = []string{"low", "medium", "high", "critical"}
	seedTags       = []string{"work", "home", "ideas", "reading", "urgent", "later", "meeting"}
)

type seedFlags struct {
	name     string
	email    string
	password string
	tasks    int
	notes    int
	seed     int64
}

type seedResult struct {
	Email string `json:"email" yaml:"email"`
	Tasks int    `json:"tasks" yaml:"tasks"`
	Notes int    `json:"notes" yaml:"notes"`
}

func newSeedCmd(e *env, g *globalFlags) *cobra.Command {
	f := &seedFlags{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an account with demo tasks and notes",
		Long: `Registers the demo account (or logs in if it exists) and creates
random tasks and notes through the API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			res, err := runSeed(cmd.Context(), c, f, e.errOut)
			if err != nil {
				return err
			}
			return render(e.out, g.output, res, func(w io.Writer) {
				fmt.Fprintf(w, "seeded %s: %d tasks, %d notes\n", res.Email, res.Tasks, res.Notes)
			})
		},
	}
	cmd.Flags().StringVar(&f.name, "name", "Demo User", "Full name for a new demo account")
	cmd.Flags().StringVar(&f.email, "email", "demo@example.com", "Demo account email")
	cmd.Flags().StringVar(&f.password, "password", "Password123", "Demo account password")
	cmd.Flags().IntVar(&f.tasks, "tasks", 20, "How many tasks to create")
	cmd.Flags().IntVar(&f.notes, "notes", 20, "How many notes to create")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed (0 picks one)")
	return cmd
}

func runSeed(ctx context.Context, c *session.Client, f *seedFlags, progress io.Writer) (*seedResult, error) {
	if err := ensureAccount(ctx, c, f); err != nil {
		return nil, err
	}

	seed := f.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)
	now := time.Now().UTC()

	for i := 1; i <= f.tasks; i++ {
		task := map[string]any{
			"title":       faker.Sentence(4),
			"description": faker.Paragraph(1, 2, 12, " "),
			"status":      faker.RandomString(seedStatuses),
			"priority":    faker.RandomString(seedPriorities),
		}
		if faker.Bool() {
			due := faker.DateRange(now.AddDate(0, 0, -14), now.AddDate(0, 0, 30))
			task["dueDate"] = due.Format("2006-01-02")
		}
		if err := c.Do(ctx, http.MethodPost, "/api/tasks", task, nil); err != nil {
			return nil, fmt.Errorf("create task %d: %w", i, err)
		}
		if i%10 == 0 || i == f.tasks {
			fmt.Fprintf(progress, "  tasks %d/%d\n", i, f.tasks)
		}
	}

	for i := 1; i <= f.notes; i++ {
		note := map[string]any{
			"title":   faker.Sentence(3),
			"content": faker.Paragraph(2, 3, 15, "\n\n"),
			"tags":    pickTags(faker),
		}
		if err := c.Do(ctx, http.MethodPost, "/api/notes", note, nil); err != nil {
			return nil, fmt.Errorf("create note %d: %w", i, err)
		}
		if i%10 == 0 || i == f.notes {
			fmt.Fprintf(progress, "  notes %d/%d\n", i, f.notes)
		}
	}

	return &seedResult{Email: f.email, Tasks: f.tasks, Notes: f.notes}, nil
}

// ensureAccount registers the demo user, or logs in when the email is taken.
func ensureAccount(ctx context.Context, c *session.Client, f *seedFlags) error {
	_, err := c.Register(ctx, f.name, f.email, f.password)
	if err == nil {
		return nil
	}

	var apiErr *session.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest || apiErr.Message != "Email already in use" {
		return fmt.Errorf("register demo account: %w", err)
	}
	if _, err := c.Login(ctx, f.email, f.password); err != nil {
		return fmt.Errorf("log in demo account: %w", err)
	}
	return nil
}

func pickTags(faker *gofakeit.Faker) []string {
	n := faker.Number(0, 3)
	seen := make(map[string]bool, n)
	tags := make([]string, 0, n)
	for len(tags) < n {
		t := faker.RandomString(seedTags)
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}
