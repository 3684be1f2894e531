package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tasksync/internal/remote"
	"tasksync/internal/style"
)

// Mutation command flags
var (
	renameSelector int
	renamePick     bool

	deleteSelector int
	deletePick     bool
	deleteYes      bool
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	GroupID: GroupLists,
	Short:   "Create a new task list",
	Long: `Create a task list with the given title on the remote service.

The service allows several lists with the same title; create does not
check for an existing one.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

var renameCmd = &cobra.Command{
	Use:     "rename <title> <new-title>",
	GroupID: GroupLists,
	Short:   "Rename a task list",
	Args:    cobra.ExactArgs(2),
	RunE:    runRename,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <title>",
	GroupID: GroupLists,
	Short:   "Delete a task list",
	Long: `Delete a task list and all of its remote tasks.

The local todo file is never touched. Deletion asks for confirmation
unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	renameCmd.Flags().IntVarP(&renameSelector, "list", "l", -1, "List number when the title is ambiguous")
	renameCmd.Flags().BoolVar(&renamePick, "pick", false, "Choose interactively when the title is ambiguous")

	deleteCmd.Flags().IntVarP(&deleteSelector, "list", "l", -1, "List number when the title is ambiguous")
	deleteCmd.Flags().BoolVar(&deletePick, "pick", false, "Choose interactively when the title is ambiguous")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	title := args[0]
	if err := remote.ValidateListTitle(title); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	list, err := a.svc.CreateTaskList(ctx, title)
	if err != nil {
		return err
	}

	if err := a.cache.NotifyMutated(ctx); err != nil {
		return fmt.Errorf("refreshing cache: %w", err)
	}

	fmt.Printf("%s Created task list %q (%s)\n", style.Bold.Render("✓"), list.Title, style.Dim.Render(list.ID))
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	title, newTitle := args[0], args[1]
	if err := remote.ValidateListTitle(newTitle); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	entry, err := a.resolveOne(ctx, title, renameSelector, renamePick)
	if err != nil {
		return err
	}

	if err := a.svc.RenameTaskList(ctx, entry.ID, newTitle); err != nil {
		return err
	}

	if err := a.cache.NotifyMutated(ctx); err != nil {
		return fmt.Errorf("refreshing cache: %w", err)
	}

	fmt.Printf("%s Renamed %q to %q\n", style.Bold.Render("✓"), title, newTitle)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	entry, err := a.resolveOne(ctx, args[0], deleteSelector, deletePick)
	if err != nil {
		return err
	}

	if !deleteYes {
		fmt.Printf("Delete task list %q (%s) and its %d tasks? [y/N] ",
			entry.Title, entry.ID, len(entry.Tasks))
		reply, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(reply), "y") {
			fmt.Println(style.Dim.Render("Aborted."))
			return nil
		}
	}

	if err := a.svc.DeleteTaskList(ctx, entry.ID); err != nil {
		return err
	}

	if err := a.cache.NotifyMutated(ctx); err != nil {
		return fmt.Errorf("refreshing cache: %w", err)
	}

	fmt.Printf("%s Deleted task list %q\n", style.Bold.Render("✓"), entry.Title)
	return nil
}
