package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasksync/internal/style"
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	GroupID: GroupDiag,
	Short:   "Inspect and rebuild the task list cache",
	RunE:    requireSubcommand,
	Long: `Inspect and rebuild the local title-to-identifier cache.

The cache maps task list titles to remote identifiers so most commands
can resolve a title without enumerating the service. It is rebuilt
automatically on misses and after mutations; these commands exist for
inspection and manual recovery.`,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached task lists",
	RunE:  runCacheShow,
}

var cacheRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the cache from the remote service",
	RunE:  runCacheRebuild,
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheRebuildCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	entries, ok := a.cache.Load()
	if !ok {
		fmt.Println(style.Dim.Render("No cache file (or unreadable); run 'tasksync cache rebuild'."))
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	fmt.Printf("%s (%d lists)\n", style.Bold.Render(a.cache.Path()), len(entries))
	for _, e := range entries {
		fmt.Printf("- %s %s\n", e.Title, style.Dim.Render(fmt.Sprintf("(%s, %d tasks)", e.ID, len(e.Tasks))))
	}
	return nil
}

func runCacheRebuild(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	entries, err := a.cache.Rebuild(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%s Rebuilt cache with %d task lists\n", style.Bold.Render("✓"), len(entries))
	return nil
}
