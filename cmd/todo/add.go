package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/store"
)

var addFlags struct {
	desc     string
	due      string
	priority string
	category string
	star     bool
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

func init() {
	f := addCmd.Flags()
	f.StringVarP(&addFlags.desc, "desc", "d", "", "description")
	f.StringVar(&addFlags.due, "due", "", "due date, 2025-04-23 or 2025-04-23 15:04")
	f.StringVarP(&addFlags.priority, "priority", "p", "", "low, medium or high (default medium)")
	f.StringVarP(&addFlags.category, "category", "c", "", "personal, work, shopping, health or other (default other)")
	f.BoolVarP(&addFlags.star, "star", "s", false, "mark the task important")
}

func runAdd(cmd *cobra.Command, args []string) error {
	due, err := models.ParseDue(addFlags.due, time.Local)
	if err != nil {
		return err
	}
	in := models.TaskInput{
		Title:       strings.Join(args, " "),
		Description: addFlags.desc,
		DueDate:     due,
		Priority:    models.Priority(addFlags.priority),
		Category:    models.Category(addFlags.category),
	}

	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	st := store.New(e.backend, store.WithLogger(e.logger.Logger))
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	if err := st.Load(ctx); err != nil {
		return err
	}

	task, err := st.Add(ctx, in)
	if err != nil {
		return err
	}
	if addFlags.star {
		if task, err = st.ToggleStar(ctx, task.ID); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", taskLine(task, time.Now()))
	return nil
}
