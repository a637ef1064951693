package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/diogo-cruz/literature-review/internal/analysis"
	"github.com/diogo-cruz/literature-review/internal/output"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <raw.json>...",
	Short: "Write a meta-summary from stored raw results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		results := make([]analysis.Result, 0, len(args))
		for _, path := range args {
			res, err := output.ReadRaw(path)
			if err != nil {
				reportError(err)
				return nil
			}
			results = append(results, res)
		}

		p, err := e.pipeline()
		if err != nil {
			reportError(err)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		path, err := p.Summarize(ctx, results)
		if err != nil {
			reportError(err)
			return nil
		}
		fmt.Fprintf(os.Stdout, "Meta-summary written to %s\n", path)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider")
	summarizeCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
}
