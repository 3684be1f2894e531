package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasksync/internal/config"
	"tasksync/internal/local"
	"tasksync/internal/style"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupDiag,
	Short:   "Check the local setup and remote connectivity",
	Long: `Run a series of checks over the local setup:

- config file loads
- calcurse data directory and todo file
- note store integrity (every referenced note file exists)
- API token
- title cache
- remote service reachability

Examples:
  tasksync doctor
  tasksync doctor --json`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// checkResult is one doctor finding.
type checkResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	results := runChecks(cmd.Context())

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	failed := 0
	for _, r := range results {
		icon := style.Bold.Render("✓")
		if !r.OK {
			icon = style.Err.Render("✗")
			failed++
		}
		fmt.Printf("  %s %s", icon, r.Name)
		if r.Detail != "" {
			fmt.Printf(" %s", style.Dim.Render("("+r.Detail+")"))
		}
		fmt.Println()
	}

	fmt.Println()
	if failed == 0 {
		fmt.Printf("%s All %d checks passed\n", style.Bold.Render("✓"), len(results))
		return nil
	}
	return fmt.Errorf("%d of %d checks failed", failed, len(results))
}

func runChecks(ctx context.Context) []checkResult {
	var results []checkResult
	check := func(name string, ok bool, detail string) {
		results = append(results, checkResult{Name: name, OK: ok, Detail: detail})
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		check("config", false, err.Error())
		return results
	}
	check("config", true, path)

	if _, err := os.Stat(cfg.DataDir); err != nil {
		check("data directory", false, err.Error())
	} else {
		check("data directory", true, cfg.DataDir)
	}

	store := local.NewStore(cfg.TodoFile(), cfg.NotesDir())
	tasks, err := store.ReadTasks()
	if err != nil {
		check("todo file", false, err.Error())
	} else {
		check("todo file", true, fmt.Sprintf("%d tasks", len(tasks)))
	}

	token, err := cfg.Token()
	switch {
	case err != nil:
		check("API token", false, err.Error())
	case token == "":
		check("API token", false, "token file is empty")
	default:
		check("API token", true, cfg.TokenFile)
	}

	a, err := newApp()
	if err != nil {
		check("remote service", false, err.Error())
		return results
	}

	if entries, ok := a.cache.Load(); ok {
		check("title cache", true, fmt.Sprintf("%d lists", len(entries)))
	} else {
		check("title cache", true, "absent, will be rebuilt on demand")
	}

	if _, err := a.svc.ListTaskLists(ctx, 1); err != nil {
		check("remote service", false, err.Error())
	} else {
		check("remote service", true, cfg.Remote.BaseURL)
	}

	return results
}
