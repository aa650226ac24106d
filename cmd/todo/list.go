package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/notify"
	"github.com/tgienger/todo/internal/store"
	"github.com/tgienger/todo/internal/taskview"
)

var listFlags struct {
	nav       string
	sort      string
	desc      bool
	search    string
	priority  string
	category  string
	completed bool
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the tasks of a list",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	f := listCmd.Flags()
	f.StringVar(&listFlags.nav, "nav", "", "list to print: all, myDay, important, planned, assigned (default from config)")
	f.StringVar(&listFlags.sort, "sort", "", "sort option (default from config)")
	f.BoolVar(&listFlags.desc, "desc", false, "sort descending")
	f.StringVar(&listFlags.search, "search", "", "only tasks whose title or description contains this")
	f.StringVar(&listFlags.priority, "priority", taskview.Any, "only tasks of this priority")
	f.StringVar(&listFlags.category, "category", taskview.Any, "only tasks of this category")
	f.BoolVar(&listFlags.completed, "completed", false, "include completed tasks")
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	view, err := listView(e.cfg.View.Nav, defaultView(e.cfg))
	if err != nil {
		return err
	}

	st := store.New(e.backend, store.WithLogger(e.logger.Logger))
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	if err := st.Load(ctx); err != nil {
		return err
	}

	now := time.Now()
	printProjection(cmd.OutOrStdout(), view.Criteria.Nav, taskview.Project(st.Tasks(), view, now), now)
	return nil
}

// listView resolves the list flags over the configured defaults
func listView(configuredNav string, defaults taskview.View) (taskview.View, error) {
	v := defaults

	nav := listFlags.nav
	if nav == "" {
		nav = configuredNav
	}
	mode, err := taskview.ParseNavMode(nav)
	if err != nil {
		return v, err
	}
	v.Criteria.Nav = mode

	if listFlags.sort != "" {
		opt, err := taskview.ParseOption(listFlags.sort)
		if err != nil {
			return v, err
		}
		v.Sort.Option = opt
	}
	if listFlags.desc {
		v.Sort.Ascending = false
	}

	if p := listFlags.priority; p != taskview.Any && !models.Priority(p).Valid() {
		return v, fmt.Errorf("%w: unknown priority %q", models.ErrValidation, p)
	}
	if c := listFlags.category; c != taskview.Any && !models.Category(c).Valid() {
		return v, fmt.Errorf("%w: unknown category %q", models.ErrValidation, c)
	}
	v.Criteria.Search = listFlags.search
	v.Criteria.Priority = models.Priority(listFlags.priority)
	v.Criteria.Category = models.Category(listFlags.category)
	v.CompletedExpanded = listFlags.completed
	return v, nil
}

func printProjection(w io.Writer, mode taskview.NavMode, p taskview.Projection, now time.Time) {
	fmt.Fprintf(w, "%s (%d)\n", mode.Label(), len(p.Incomplete))
	if len(p.Incomplete) == 0 {
		fmt.Fprintln(w, "  No tasks")
	}
	for _, t := range p.Incomplete {
		fmt.Fprintln(w, "  "+taskLine(t, now))
	}

	if p.CompletedCount() == 0 {
		return
	}
	fmt.Fprintf(w, "\nCompleted (%d)\n", p.CompletedCount())
	for _, t := range p.VisibleCompleted() {
		fmt.Fprintln(w, "  "+taskLine(t, now))
	}
}

func taskLine(t models.Task, now time.Time) string {
	var b strings.Builder
	if t.Completed {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	if t.IsStarred {
		b.WriteString("★ ")
	}
	b.WriteString(t.Title)

	details := []string{string(t.Priority), string(t.Category)}
	if t.HasDueDate() {
		due := "due " + models.FormatDue(t.DueDate)
		if !t.Completed && t.DueDate.After(now) {
			due += ", " + notify.FormatRemaining(*t.DueDate, now)
		} else if !t.Completed {
			due += ", overdue"
		}
		details = append(details, due)
	}
	fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	return b.String()
}
