package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [links...]",
	Short: "Download papers without analyzing them",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		client := e.arxivClient()
		failed := 0
		for _, link := range links {
			path, err := client.Download(ctx, link)
			if err != nil {
				if ctx.Err() != nil {
					reportError(err)
					return nil
				}
				fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
				failed++
				continue
			}
			fmt.Fprintln(os.Stdout, path)
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d downloads failed\n", failed, len(links))
			exitCode = ExitItemsFailed
		}
		return nil
	},
}
