package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/diogo-cruz/literature-review/internal/gather"
	"github.com/diogo-cruz/literature-review/internal/output"
	"github.com/spf13/cobra"
)

var flagGatherOut string

var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "Export per-paper summaries and arXiv metadata to CSV",
	Long: "Parse the newest summary of every paper in the paper list and join it with " +
		"the paper's arXiv metadata into one CSV row.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		links, err := e.paperLinks(nil)
		if err != nil {
			reportError(err)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		client := e.arxivClient()
		rows, err := gather.Collect(ctx, links, e.cfg.Files.SummariesDir, client.Metadata, e.logger)
		if err != nil {
			reportError(err)
			return nil
		}

		if err := writeFile(flagGatherOut, func(f *os.File) error { return gather.WriteCSV(f, rows) }); err != nil {
			reportError(err)
			return nil
		}
		fmt.Fprintf(os.Stdout, "Wrote %d rows to %s\n", len(rows), flagGatherOut)

		counts := gather.NACounts(rows)
		if len(counts) == 0 {
			return nil
		}
		table := make([][]string, 0, len(counts))
		for _, c := range counts {
			table = append(table, []string{c.Column, strconv.Itoa(c.Count)})
		}
		fmt.Fprintln(os.Stdout, "Missing values:")
		fmt.Fprintln(os.Stdout, output.RenderTable([]string{"Column", "N/A"}, table, []output.Align{output.AlignLeft, output.AlignRight}))
		return nil
	},
}

// writeFile creates path and hands it to write, reporting the first error.
func writeFile(path string, write func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	gatherCmd.Flags().StringVar(&flagGatherOut, "out", "paper_summaries.csv", "CSV output path")
}
