package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opencouncil/crux/internal/model"
	"github.com/opencouncil/crux/internal/pipeline"
)

var (
	llmProvider string
	llmModel    string
	concurrency int
	noCache     bool
	outputPath  string
	format      string
	reportID    string
	userID      string
	runTimeout  time.Duration
)

// runInput is the on-disk export from the upstream clustering step.
type runInput struct {
	Tree   model.ClaimsTree      `json:"tree"`
	Topics []model.TopicMetadata `json:"topics"`
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <claims.json>",
	Short: "Extract cruxes and controversy scores from a claims export",
	Long: `Run the full crux pipeline over a claims-tree JSON export:
- Anonymize speakers behind stable numeric IDs
- Select subtopics with at least two claims
- Query the model for each subtopic with bounded concurrency
- Score controversy, roll up per topic, build the speaker matrix

Example:
  crux run claims.json
  crux run claims.json --provider anthropic --model claude-3-5-haiku-latest
  crux run claims.json --concurrency 3 --output report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, anthropic, ollama)")
	runCmd.Flags().StringVar(&llmModel, "model", "gpt-4o-mini", "LLM model name")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 6, "max in-flight model calls")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the result to a file instead of stdout")
	runCmd.Flags().StringVar(&format, "format", "json", "output format (json, yaml)")
	runCmd.Flags().StringVar(&reportID, "report-id", "", "report identifier for log correlation")
	runCmd.Flags().StringVar(&userID, "user-id", "", "user identifier for log correlation")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 15*time.Minute, "total timeout for the run")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	input, err := readInput(args[0])
	if err != nil {
		return err
	}

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.Concurrency.CruxWorkers = concurrency
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.Format = format

	apiKey, err := resolveAPIKey(llmProvider, cfg)
	if err != nil {
		return err
	}
	cfg.LLM.APIKey = apiKey

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := p.Run(ctx, input.Tree, input.Topics, &model.RunOptions{
		ReportID: reportID,
		UserID:   userID,
	})
	if err != nil {
		return err
	}

	return writeResult(result, outputPath, cfg.Output.Format)
}

func readInput(path string) (*runInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claims export: %w", err)
	}

	var input runInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("decode claims export: %w", err)
	}
	return &input, nil
}

func resolveAPIKey(provider string, cfg *model.Config) (string, error) {
	switch provider {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		return key, nil
	case "anthropic", "claude":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return "", fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		return key, nil
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
		return "", nil
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}
}

func writeResult(result *model.PipelineResult, path, format string) error {
	var data []byte
	var err error

	switch format {
	case "yaml":
		data, err = yaml.Marshal(result)
	default:
		data, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Result written to %s\n", path)
	return nil
}
