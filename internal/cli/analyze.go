package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/diogo-cruz/literature-review/internal/extract"
	"github.com/diogo-cruz/literature-review/internal/output"
	"github.com/diogo-cruz/literature-review/internal/providers"
	"github.com/spf13/cobra"
)

var (
	flagContext string
	flagFormat  string
	flagOut     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [links...]",
	Short: "Analyze papers against the project document",
	Long: "Download each arXiv paper, analyze it against the project document and write " +
		"per-paper summaries plus a meta-summary. Links default to the configured paper list.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := output.GetWriter(flagFormat); err != nil {
			return err
		}
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		links, err := e.paperLinks(args)
		if err != nil {
			reportError(err)
			return nil
		}

		contextPath := flagContext
		if contextPath == "" {
			contextPath = e.cfg.Files.ProjectDoc
		}
		contextText, err := extract.Context(contextPath)
		if err != nil {
			reportError(err)
			return nil
		}

		p, err := e.pipeline()
		if err != nil {
			reportError(err)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		e.logger.Info("starting analysis", "papers", len(links), "provider", e.cfg.LLM.Provider, "model", e.cfg.LLM.Model)
		report, runErr := p.Run(ctx, links, contextText)

		if err := output.WriteReport(report, flagFormat, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if runErr != nil {
			reportError(runErr)
			return nil
		}
		if report.Summary.Counts.Failed > 0 {
			exitCode = ExitItemsFailed
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider ("+strings.Join(providers.Names(), ", ")+")")
	analyzeCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	analyzeCmd.Flags().StringVar(&flagContext, "context", "", "Project document (default: files.project_doc)")
	analyzeCmd.Flags().StringVar(&flagFormat, "format", "text", "Run report format ("+strings.Join(output.Formats, ", ")+")")
	analyzeCmd.Flags().StringVar(&flagOut, "out", "", "Run report path (default: stdout)")
	analyzeCmd.Flags().BoolVar(&flagContinueOnError, "continue-on-error", false, "Skip failed papers instead of aborting the batch")
	analyzeCmd.Flags().BoolVar(&flagNoMeta, "no-meta", false, "Skip the meta-summary")
	analyzeCmd.Flags().BoolVar(&flagStrictExtraction, "strict-extraction", false, "Fail a paper whose text cannot be extracted")
}
