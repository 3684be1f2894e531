package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasksync/internal/style"
)

// Show command flags
var (
	showSelector int
	showPick     bool
)

var showCmd = &cobra.Command{
	Use:     "show <title>",
	GroupID: GroupLists,
	Short:   "Show the tasks of a task list",
	Long: `Show a task list and its tasks, in position order.

Titles are not unique. When several lists share the title, pass
-l <number> to select one, or --pick for an interactive chooser.

Examples:
  tasksync show groceries
  tasksync show groceries -l 1
  tasksync show groceries --pick`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().IntVarP(&showSelector, "list", "l", -1, "List number when the title is ambiguous")
	showCmd.Flags().BoolVar(&showPick, "pick", false, "Choose interactively when the title is ambiguous")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	entry, err := a.resolveOne(ctx, args[0], showSelector, showPick)
	if err != nil {
		return err
	}

	list, err := a.svc.GetTaskList(ctx, entry.ID)
	if err != nil {
		return err
	}

	tasks, err := a.svc.ListTasks(ctx, entry.ID)
	if err != nil {
		return err
	}

	if jsonOutput {
		out := struct {
			List  any `json:"list"`
			Tasks any `json:"tasks"`
		}{list, tasks}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		fmt.Println(style.Bold.Render(list.Title))
		if verbose {
			fmt.Println(style.Dim.Render("id " + list.ID + " · updated " + list.Updated.Format("2006-01-02 15:04")))
		}
		if len(tasks) == 0 {
			fmt.Println(style.Dim.Render("  (no tasks)"))
		}
		for i, t := range tasks {
			fmt.Printf("  %d. %s\n", i+1, t.Title)
			if t.Note != "" {
				fmt.Printf("     %s\n", style.Dim.Render(t.Note))
			}
		}
	}

	// Keep the cache in step with what was just fetched.
	if err := a.cache.NotifyMutated(ctx); err != nil && verbose {
		fmt.Fprintln(os.Stderr, style.Dim.Render("cache refresh failed: "+err.Error()))
	}
	return nil
}
