package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/diogo-cruz/literature-review/internal/gather"
	"github.com/spf13/cobra"
)

var (
	flagDays       int
	flagChunk      int
	flagCategory   string
	flagCollectOut string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "List recent arXiv papers in a category as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagDays <= 0 || flagChunk <= 0 {
			return fmt.Errorf("--days and --chunk must be positive")
		}
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		papers, err := e.arxivClient().CollectRecent(ctx, flagDays, flagChunk, flagCategory)
		if err != nil {
			reportError(err)
			return nil
		}

		if err := writeFile(flagCollectOut, func(f *os.File) error { return gather.WritePapersCSV(f, papers) }); err != nil {
			reportError(err)
			return nil
		}
		fmt.Fprintf(os.Stdout, "Collected %d papers into %s\n", len(papers), flagCollectOut)
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVar(&flagDays, "days", 180, "How many days back to search")
	collectCmd.Flags().IntVar(&flagChunk, "chunk", 15, "Days per query window")
	collectCmd.Flags().StringVar(&flagCategory, "category", "cs.LG", "arXiv category")
	collectCmd.Flags().StringVar(&flagCollectOut, "out", "recent_ml_papers.csv", "CSV output path")
}
