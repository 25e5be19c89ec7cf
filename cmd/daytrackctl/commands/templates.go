package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/daytrack/daytrack/internal/config"
	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewTemplatesCmd creates the templates command with list, add and
// deactivate subcommands.
func NewTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage habit templates",
		Long:  "List, add or deactivate the habit templates that seed each day's tasks.",
	}
	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesAddCmd())
	cmd.AddCommand(newTemplatesDeactivateCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habit templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := templateRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()
			var templates []*models.HabitTemplate
			if activeOnly {
				templates, err = repo.ListActive(ctx)
			} else {
				templates, err = repo.List(ctx)
			}
			if err != nil {
				return fmt.Errorf("list habit templates: %w", err)
			}

			if len(templates) == 0 {
				fmt.Println("No habit templates configured")
				return nil
			}

			fmt.Println("Habit templates:")
			for _, tmpl := range templates {
				state := "active"
				if !tmpl.IsActive {
					state = "inactive"
				}
				fmt.Printf("  - %s  %s (%s)\n", tmpl.ID, tmpl.Title, state)
				if tmpl.Description != "" {
					fmt.Printf("    Description: %s\n", tmpl.Description)
				}
				fmt.Printf("    Default target: %ds\n", tmpl.DefaultTargetSeconds)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Show active templates only")
	return cmd
}

func newTemplatesAddCmd() *cobra.Command {
	var title, description string
	var targetSeconds int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a habit template",
		RunE: func(cmd *cobra.Command, args []string) error {
			title = strings.TrimSpace(title)
			if title == "" {
				return fmt.Errorf("--title is required")
			}
			if targetSeconds < 0 {
				return fmt.Errorf("--target-seconds must not be negative")
			}

			repo, closeDB, err := templateRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			tmpl := &models.HabitTemplate{
				ID:                   uuid.New(),
				Title:                title,
				Description:          strings.TrimSpace(description),
				DefaultTargetSeconds: targetSeconds,
				IsActive:             true,
			}
			if err := repo.Create(context.Background(), tmpl); err != nil {
				return fmt.Errorf("create habit template: %w", err)
			}

			fmt.Printf("Created habit template %s (%s)\n", tmpl.ID, tmpl.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Template title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Template description")
	cmd.Flags().IntVar(&targetSeconds, "target-seconds", 0, "Default daily target in seconds (0 = no target)")
	return cmd
}

func newTemplatesDeactivateCmd() *cobra.Command {
	var idStr string

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Deactivate a habit template",
		Long:  "Stop a template from seeding future days. Tasks already generated from it are untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(strings.TrimSpace(idStr))
			if err != nil {
				return fmt.Errorf("--id must be a valid UUID: %w", err)
			}

			repo, closeDB, err := templateRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()
			tmpl, err := repo.GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("get habit template: %w", err)
			}

			if !tmpl.IsActive {
				fmt.Printf("Habit template %s is already inactive\n", tmpl.ID)
				return nil
			}

			tmpl.IsActive = false
			if err := repo.Update(ctx, tmpl); err != nil {
				return fmt.Errorf("deactivate habit template: %w", err)
			}

			fmt.Printf("Deactivated habit template %s (%s)\n", tmpl.ID, tmpl.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&idStr, "id", "", "Template ID (required)")
	return cmd
}

// templateRepo opens the database from the environment configuration and
// returns a template repository plus a close func.
func templateRepo() (*database.HabitTemplateRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return database.NewHabitTemplateRepository(db), closeDB, nil
}
