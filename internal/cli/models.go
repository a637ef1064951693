package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/diogo-cruz/literature-review/internal/output"
	"github.com/diogo-cruz/literature-review/internal/providers"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

type modelInfo struct {
	Provider string
	Models   []string
}

var knownModels = []modelInfo{
	{
		Provider: "anthropic",
		Models: []string{
			"claude-3-5-haiku-latest",
			"claude-3-5-sonnet-latest",
			"claude-sonnet-4-5",
			"claude-opus-4-1",
		},
	},
	{
		Provider: "openai",
		Models: []string{
			"gpt-4.1",
			"gpt-4.1-mini",
			"gpt-4o",
			"o3-mini",
		},
	},
	{
		Provider: "gemini",
		Models: []string{
			"gemini-2.5-flash",
			"gemini-2.5-pro",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"llama3.3",
			"llama3.1",
			"qwen2.5",
			"mistral",
		},
	},
	{
		Provider: "bedrock",
		Models: []string{
			"anthropic.claude-3-5-haiku-20241022-v1:0",
			"anthropic.claude-3-5-sonnet-20241022-v2:0",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Run: func(cmd *cobra.Command, args []string) {
		rows := make([][]string, 0, len(knownModels))
		for _, info := range knownModels {
			rows = append(rows, []string{info.Provider, strings.Join(info.Models, "\n")})
		}
		fmt.Fprintln(os.Stdout, output.RenderTable([]string{"Provider", "Models"}, rows, nil))
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		providerName := e.cfg.LLM.Provider
		fmt.Fprintf(os.Stdout, "Checking %s (%s)...\n", providerName, e.cfg.LLM.Model)

		p, err := providers.New(providerName, e.cfg.LLM.Model, providers.WithRegion(e.cfg.Bedrock.Region))
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err = p.Complete(ctx, providers.Request{
			System:    "Respond with exactly: ok",
			Prompt:    "ping",
			MaxTokens: 10,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = exitCodeFor(err)
			return nil
		}

		fmt.Fprintf(os.Stdout, "OK: %s is configured and responding\n", providerName)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
