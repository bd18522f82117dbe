package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sprout/internal/category"
	"sprout/internal/task"
	"sprout/internal/view"
)

var (
	bold      = color.New(color.Bold).SprintFunc()
	urgencies = map[task.Urgency]func(a ...interface{}) string{
		task.UrgencyOverdue: color.New(color.FgRed, color.Bold).SprintFunc(),
		task.UrgencyUrgent:  color.New(color.FgRed).SprintFunc(),
		task.UrgencySoon:    color.New(color.FgYellow).SprintFunc(),
		task.UrgencyNormal:  color.New(color.FgHiBlack).SprintFunc(),
	}
)

func addList(topLevel *cobra.Command, v *viper.Viper) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "list [category-id]",
		Short: "Print the tasks under a category and its subcategories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			id := category.RootID
			if len(args) == 1 {
				id = args[0]
			}
			if err := a.view.Select(id); err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), a.view, time.Now())
			return nil
		},
	})
}

func printTasks(w io.Writer, v *view.Coordinator, now time.Time) {
	title, _ := v.Tree().Title(v.Selection())
	fmt.Fprintln(w, bold(title))

	tasks := v.Visible()
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("ID"), bold("Done"), bold("Task"), bold("Deadline"), bold("Urgency"), bold("Focus"), bold("Category"))
	for _, r := range tasks {
		done := "[ ]"
		if r.Completed {
			done = "[x]"
		}
		deadline := ""
		if r.Deadline != nil {
			deadline = task.DeadlineLabel(now, *r.Deadline)
		}
		u := r.Urgency(now)
		label := u.String()
		if paint, ok := urgencies[u]; ok {
			label = paint(label)
		}
		cat, _ := v.Tree().Title(r.CategoryID)
		tbl.AddRow(strconv.FormatInt(r.ID, 10), done, r.Text, deadline, label, fmt.Sprintf("%dm", r.TotalFocusMinutes), cat)
	}
	fmt.Fprintln(w, tbl)
}

func addTree(topLevel *cobra.Command, v *viper.Viper) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "tree",
		Short: "Print the category tree with open and total task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			printTree(cmd.OutOrStdout(), a.view)
			return nil
		},
	})
}

func printTree(w io.Writer, v *view.Coordinator) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Category"), bold("Open"), bold("Total"), bold("ID"))
	v.Tree().Walk(func(id, title string, depth int) {
		total, pending := v.Count(id)
		tbl.AddRow(strings.Repeat("  ", depth)+title, pending, total, id)
	})
	fmt.Fprintln(w, tbl)
}

func addReset(topLevel *cobra.Command, v *viper.Viper) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Replace all stored data with the starter dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := a.repo.Clear(); err != nil {
				a.Close()
				return fmt.Errorf("clear store: %w", err)
			}
			a.Close()

			a, err = open(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s store: %d categories, %d tasks\n",
				a.cfg.Store, a.view.Tree().Len(), len(a.view.AllTasks()))
			return nil
		},
	})
}
