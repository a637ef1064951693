package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/diogo-cruz/literature-review/internal/output"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()
		e.cfg.Cache.Enabled = true
		c, err := e.openCache()
		if err != nil {
			return err
		}
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Cache cleared.")
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()
		c, err := e.openCache()
		if err != nil {
			return err
		}
		if !c.Enabled() {
			fmt.Fprintln(os.Stdout, "Cache is disabled.")
			return nil
		}
		stats, err := c.Stats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		rows := [][]string{
			{"Directory", stats.Dir},
			{"Entries", strconv.Itoa(stats.Entries)},
			{"Size (bytes)", strconv.FormatInt(stats.TotalBytes, 10)},
			{"Corrupted", strconv.Itoa(stats.Corrupted)},
		}
		fmt.Fprintln(os.Stdout, output.RenderTable([]string{"Cache", "Value"}, rows, nil))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
