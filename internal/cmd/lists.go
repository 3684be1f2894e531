package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tasksync/internal/style"
)

// Lists command flags
var (
	listsMax  int
	listsSort bool
)

var listsCmd = &cobra.Command{
	Use:     "lists",
	GroupID: GroupLists,
	Short:   "Show all task lists",
	Long: `Show every task list on the remote service.

The listing always reflects the live service, and refreshes the local
title cache as a side effect.

Examples:
  tasksync lists
  tasksync lists --sort -v`,
	RunE: runLists,
}

func init() {
	listsCmd.Flags().IntVarP(&listsMax, "max-results", "n", 0, "Maximum number of lists to fetch (default from config)")
	listsCmd.Flags().BoolVar(&listsSort, "sort", false, "Sort lists by title")

	rootCmd.AddCommand(listsCmd)
}

func runLists(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	max := listsMax
	if max <= 0 {
		max = a.cfg.Remote.MaxResults
	}

	lists, err := a.svc.ListTaskLists(ctx, max)
	if err != nil {
		return err
	}

	if listsSort {
		c := collate.New(language.Und)
		sort.SliceStable(lists, func(i, j int) bool {
			return c.CompareString(lists[i].Title, lists[j].Title) < 0
		})
	}

	// Refresh the cache so later title resolutions see what was listed.
	// Non-fatal: the listing itself already succeeded.
	if err := a.cache.NotifyMutated(ctx); err != nil && verbose {
		fmt.Fprintln(os.Stderr, style.Dim.Render("cache refresh failed: "+err.Error()))
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lists)
	}

	if len(lists) == 0 {
		fmt.Println(style.Dim.Render("No task lists found."))
		return nil
	}

	for _, list := range lists {
		fmt.Printf("- %s\n", list.Title)
		if verbose {
			fmt.Printf("    %s\n", style.Dim.Render("id "+list.ID+" · updated "+list.Updated.Format("2006-01-02 15:04")))
		}
	}
	return nil
}
