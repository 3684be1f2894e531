package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasksync/internal/engine"
	"tasksync/internal/style"
)

// Sync command flags
var (
	syncSelector int
	syncPick     bool
	syncDryRun   bool
)

var syncCmd = &cobra.Command{
	Use:     "sync <title>",
	GroupID: GroupSync,
	Short:   "Sync a task list with the local todo file",
	Long: `Converge a remote task list and the local calcurse todo file.

Tasks present on only one side are created on the other. Tasks are
compared by title and note; two identical tasks count as two, so
duplicates survive. Nothing is ever deleted or modified, and running
sync twice changes nothing the second time.

Examples:
  tasksync sync groceries
  tasksync sync groceries --dry-run
  tasksync sync groceries -l 1`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVarP(&syncSelector, "list", "l", -1, "List number when the title is ambiguous")
	syncCmd.Flags().BoolVar(&syncPick, "pick", false, "Choose interactively when the title is ambiguous")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would be created without doing it")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	entry, err := a.resolveOne(ctx, args[0], syncSelector, syncPick)
	if err != nil {
		return err
	}

	eng := engine.New(a.svc, a.store)

	if syncDryRun {
		plan, err := eng.Plan(ctx, entry.ID)
		if err != nil {
			return err
		}
		return printPlan(entry.Title, plan)
	}

	res, err := eng.Sync(ctx, entry.ID)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.CreatedLocal == 0 && res.CreatedRemote == 0 {
		fmt.Printf("%s %q is already in sync\n", style.Bold.Render("✓"), entry.Title)
		return nil
	}
	fmt.Printf("%s Synced %q: created %d local, %d remote\n",
		style.Bold.Render("✓"), entry.Title, res.CreatedLocal, res.CreatedRemote)
	return nil
}

func printPlan(title string, plan engine.Plan) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	if plan.Empty() {
		fmt.Printf("%s %q is already in sync\n", style.Bold.Render("✓"), title)
		return nil
	}

	if len(plan.MissingLocal) > 0 {
		fmt.Printf("%s\n", style.Bold.Render(fmt.Sprintf("Would add %d task(s) to the todo file:", len(plan.MissingLocal))))
		for _, t := range plan.MissingLocal {
			fmt.Printf("  + %s\n", t.Title)
		}
	}
	if len(plan.MissingRemote) > 0 {
		fmt.Printf("%s\n", style.Bold.Render(fmt.Sprintf("Would create %d task(s) on %q:", len(plan.MissingRemote), title)))
		for _, t := range plan.MissingRemote {
			fmt.Printf("  + %s\n", t.Title)
		}
	}
	return nil
}
