// Package cmd implements the tasksync command line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasksync/internal/cache"
	"tasksync/internal/config"
	"tasksync/internal/local"
	"tasksync/internal/remote"
	"tasksync/internal/style"
)

// Command groups shown in help output.
const (
	GroupLists    = "lists"
	GroupSync     = "sync"
	GroupServices = "services"
	GroupDiag     = "diag"
)

// Global flags
var (
	configPath string
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "tasksync",
	Short: "Sync calcurse todos with hosted task lists",
	Long: `tasksync keeps a local calcurse todo file and a remote hosted
task service converged.

Task lists are addressed by title. Syncing only ever creates tasks,
on whichever side is missing them, so runs are idempotent and never
destroy existing work.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupLists, Title: "Task lists:"},
		&cobra.Group{ID: GroupSync, Title: "Syncing:"},
		&cobra.Group{ID: GroupServices, Title: "Services:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
	)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/tasksync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}

// requireSubcommand is the RunE for commands that only group subcommands.
func requireSubcommand(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.Err.Render("Error:"), formatError(err))
		return 1
	}
	return 0
}

// formatError renders an error for the terminal. Known failure shapes get
// a short actionable message; --verbose shows the full chain.
func formatError(err error) string {
	if verbose {
		return err.Error()
	}

	var ambig *cache.AmbiguousError
	if errors.As(err, &ambig) {
		msg := fmt.Sprintf("%d task lists are titled %q:\n", len(ambig.Candidates), ambig.Title)
		for i, e := range ambig.Candidates {
			msg += fmt.Sprintf("  %d. %s %s\n", i, ambig.Title, style.Dim.Render("("+e.ID+")"))
		}
		msg += "Select one with -l <number>, or --pick to choose interactively."
		return msg
	}

	var remoteErr *remote.Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Error()
	}

	var storeErr *local.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Error()
	}

	return err.Error()
}

// loadConfig loads the config file named by --config, or the default.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
