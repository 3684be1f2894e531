package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tasksync/internal/daemon"
	"tasksync/internal/engine"
	"tasksync/internal/style"
)

// Watch command flags
var (
	watchSelector int
	watchInterval string
	watchLogLines int
	watchFollow   bool
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: GroupServices,
	Short:   "Manage the background sync daemon",
	RunE:    requireSubcommand,
	Long: `Manage the background sync daemon.

The daemon watches the todo file and notes directory and syncs the
chosen task list whenever they change, with a periodic full sync to
pick up remote-side edits.`,
}

var watchStartCmd = &cobra.Command{
	Use:   "start <title>",
	Short: "Start watching a task list in the background",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchStart,
}

var watchStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the sync daemon",
	RunE:  runWatchStop,
}

var watchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync daemon status",
	RunE:  runWatchStatus,
}

var watchLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View sync daemon logs",
	RunE:  runWatchLogs,
}

var watchRunCmd = &cobra.Command{
	Use:    "run <title>",
	Short:  "Run the sync daemon in the foreground (internal)",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE:   runWatchRun,
}

func init() {
	watchCmd.AddCommand(watchStartCmd)
	watchCmd.AddCommand(watchStopCmd)
	watchCmd.AddCommand(watchStatusCmd)
	watchCmd.AddCommand(watchLogsCmd)
	watchCmd.AddCommand(watchRunCmd)

	watchStartCmd.Flags().IntVarP(&watchSelector, "list", "l", -1, "List number when the title is ambiguous")
	watchStartCmd.Flags().StringVarP(&watchInterval, "interval", "i", "", "Poll interval (e.g. 30s, 5m; default from config)")
	watchRunCmd.Flags().IntVarP(&watchSelector, "list", "l", -1, "List number when the title is ambiguous")
	watchRunCmd.Flags().StringVarP(&watchInterval, "interval", "i", "", "Poll interval")
	watchLogsCmd.Flags().IntVarP(&watchLogLines, "lines", "n", 50, "Number of lines to show")
	watchLogsCmd.Flags().BoolVarP(&watchFollow, "follow", "f", false, "Follow log output")

	rootCmd.AddCommand(watchCmd)
}

func runWatchStart(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if running, pid := daemon.IsRunning(a.cfg.StateDir); running {
		return fmt.Errorf("watch daemon already running (pid %d)", pid)
	}

	// Resolve the title up front so an ambiguous or unknown title fails
	// here, not silently inside the daemon.
	if _, err := a.resolveOne(cmd.Context(), args[0], watchSelector, false); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding executable: %w", err)
	}

	daemonArgs := []string{"watch", "run", args[0]}
	if watchSelector >= 0 {
		daemonArgs = append(daemonArgs, "--list", fmt.Sprint(watchSelector))
	}
	if watchInterval != "" {
		daemonArgs = append(daemonArgs, "--interval", watchInterval)
	}
	if configPath != "" {
		daemonArgs = append(daemonArgs, "--config", configPath)
	}

	daemonCmd := exec.Command(exe, daemonArgs...)
	daemonCmd.Stdin = nil
	daemonCmd.Stdout = nil
	daemonCmd.Stderr = nil

	if err := daemonCmd.Start(); err != nil {
		return fmt.Errorf("starting daemon: %w", err)
	}

	time.Sleep(200 * time.Millisecond)

	running, pid := daemon.IsRunning(a.cfg.StateDir)
	if !running {
		return fmt.Errorf("daemon failed to start (check 'tasksync watch logs')")
	}

	fmt.Printf("%s Watch daemon started for %q (PID %d)\n", style.Bold.Render("✓"), args[0], pid)
	return nil
}

func runWatchRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entry, err := a.resolveOne(ctx, args[0], watchSelector, false)
	if err != nil {
		return err
	}

	interval := time.Duration(a.cfg.Watch.IntervalSeconds) * time.Second
	if watchInterval != "" {
		interval, err = time.ParseDuration(watchInterval)
		if err != nil {
			return fmt.Errorf("parsing poll interval: %w", err)
		}
	}

	d := daemon.New(daemon.Config{
		TodoFile: a.cfg.TodoFile(),
		NotesDir: a.cfg.NotesDir(),
		ListID:   entry.ID,
		StateDir: a.cfg.StateDir,
		Interval: interval,
		Debounce: time.Duration(a.cfg.Watch.DebounceMillis) * time.Millisecond,
	}, engine.New(a.svc, a.store))

	return d.Run(ctx)
}

func runWatchStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	running, pid := daemon.IsRunning(cfg.StateDir)
	if !running {
		return fmt.Errorf("watch daemon is not running")
	}

	if err := daemon.Stop(cfg.StateDir); err != nil {
		return err
	}

	fmt.Printf("%s Watch daemon stopped (was PID %d)\n", style.Bold.Render("✓"), pid)
	return nil
}

func runWatchStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	running, pid := daemon.IsRunning(cfg.StateDir)
	if !running {
		fmt.Printf("%s Watch daemon is not running\n", style.Dim.Render("○"))
		fmt.Printf("\nStart with: %s\n", style.Dim.Render("tasksync watch start <title>"))
		return nil
	}

	fmt.Printf("%s Watch daemon is %s (PID %d)\n",
		style.Bold.Render("●"), style.Bold.Render("running"), pid)

	state, err := daemon.LoadState(cfg.StateDir)
	if err == nil && !state.StartedAt.IsZero() {
		fmt.Printf("  List: %s\n", state.ListID)
		fmt.Printf("  Started: %s\n", state.StartedAt.Local().Format("2006-01-02 15:04:05"))
		if !state.LastSync.IsZero() {
			fmt.Printf("  Last sync: %s\n", state.LastSync.Local().Format("15:04:05"))
		}
		fmt.Printf("  Total syncs: %d\n", state.SyncCount)
		if state.ErrorCount > 0 {
			fmt.Printf("  Errors: %d\n", state.ErrorCount)
		}
	}
	return nil
}

func runWatchLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logFile := daemon.LogFile(cfg.StateDir)
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("no log file found at %s", logFile)
	}

	if watchFollow {
		tailCmd := exec.Command("tail", "-f", logFile)
		tailCmd.Stdout = os.Stdout
		tailCmd.Stderr = os.Stderr
		return tailCmd.Run()
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		return fmt.Errorf("reading log file: %w", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > watchLogLines {
		lines = lines[len(lines)-watchLogLines:]
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
