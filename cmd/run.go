package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ferrovax/mingle/internal/ai"
	"github.com/ferrovax/mingle/internal/ai/gemini"
	"github.com/ferrovax/mingle/internal/ai/openaicompat"
	"github.com/ferrovax/mingle/internal/filtering"
	"github.com/ferrovax/mingle/internal/logger"
	"github.com/ferrovax/mingle/internal/matching"
	"github.com/ferrovax/mingle/internal/pipeline"
	"github.com/ferrovax/mingle/internal/roster"
	"github.com/ferrovax/mingle/internal/secrets"
	"github.com/ferrovax/mingle/internal/topics"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes          = "Yes"
	PromptNo           = "No"
	PromptRosterToFile = "Dump roster to file"

	defaultOutput = "people_data.json"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed with enrichment?",
	Items: []string{PromptYes, PromptNo, PromptRosterToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the mingle enrichment pipeline",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before calling the generation service")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with attendees to exclude. Default is unset.")
	runCmd.Flags().StringP("output", "o", "", "path of the output document. Default is "+defaultOutput)

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("output", runCmd.Flags().Lookup("output"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting mingle", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if strings.TrimSpace(config.Source) == "" {
		logger.Fatal("roster source is required under the 'source' key")
	}

	attendees, err := roster.LoadCSV(config.Source)
	if err != nil {
		if errors.Is(err, roster.ErrSourceMissing) {
			logger.Fatal("roster source not found",
				zap.String("source", config.Source),
				zap.String("hint", "set the 'source' key to the roster CSV export"),
			)
		}
		logger.Fatal("reading roster source", zap.Error(err))
	}

	logger.Info("roster loaded", zap.Int("count", attendees.Len()))

	filterCfg := &filtering.Config{ExcludeFile: viper.GetString("exclude-file")}
	steps := []filtering.Filter{
		filtering.NewIdentity(),
		filtering.NewApproved(),
		filtering.NewExcludeFile(),
	}

	// Filtering is pure and idempotent, so previewing the approved batch here
	// and re-running the same steps inside the pipeline is safe.
	filtered, err := filtering.Run(ctx, filterCfg, filtering.Deps{Logger: logger}, steps, attendees)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if filtered.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no approved attendees left after filters"))
		return
	}

	logger.Info("approved attendees", zap.Int("count", filtered.Len()), zap.Strings("names", filtered.Names()))

	if cmd.Flag("auto-approve").Value.String() == "false" {
		if err := confirm(filtered, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	topicGen, err := prepareTopicGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building topic generator", zap.Error(err))
	}

	var seed int64
	if config.Matching != nil {
		seed = config.Matching.Seed
	}

	workers := 1
	if config.AI != nil && config.AI.Workers > 0 {
		workers = config.AI.Workers
	}

	p := pipeline.New(pipeline.Config{Workers: workers}, pipeline.Deps{
		Filters:   steps,
		FilterCfg: filterCfg,
		Topics:    topicGen,
		Engine:    matching.NewEngine(matching.NewRandomScorer(seed), logger),
		Logger:    logger,
	})

	document, err := p.Run(ctx, filtered)
	if err != nil {
		logger.Fatal("pipeline run failed", zap.Error(err), zap.String("state", string(p.State())))
	}

	for _, failure := range p.Failures() {
		logger.Warn("isolated failure during run",
			zap.String("stage", failure.Stage),
			zap.String("attendee_id", failure.APIID),
			zap.Error(failure.Err),
		)
	}

	output := strings.TrimSpace(viper.GetString("output"))
	if output == "" {
		output = strings.TrimSpace(config.Output)
	}
	if output == "" {
		output = defaultOutput
	}

	if err := document.WriteFile(output); err != nil {
		logger.Fatal("writing output document", zap.Error(err))
	}

	logger.Info("output document written",
		zap.String("output", output),
		zap.Int("attendees", document.Len()),
		zap.Int("isolated_failures", len(p.Failures())),
	)
}

func confirm(attendees *roster.Attendees, logger *zap.Logger) error {
	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptYes:
			return nil
		case PromptNo:
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return errExit
		case PromptRosterToFile:
			filename, err := attendees.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump roster to file: %w", err)
			}
			logger.Info("dumping roster to file", zap.String("filename", filename))
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func prepareTopicGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*topics.Generator, error) {
	if cfg == nil {
		log.Warn("ai configuration is missing; attendees will get empty topic lists")
		return nil, nil
	}

	generator, err := newTextGenerator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	topicsCfg := topics.Config{}
	if cfg.Topics != nil {
		topicsCfg = topics.Config{
			Count:           cfg.Topics.Count,
			Temperature:     cfg.Topics.Temperature,
			MaxOutputTokens: cfg.Topics.MaxOutputTokens,
			MaxLogLength:    cfg.Topics.MaxLogLength,
		}
	}

	provider := providerName(cfg)
	genLogger := logger.WithCommonFields(log, provider, generator.Model())

	return topics.NewGenerator(generator, topicsCfg, genLogger), nil
}

func newTextGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.TextGenerator, error) {
	switch providerName(cfg) {
	case "gemini":
		if cfg.Gemini == nil {
			return nil, fmt.Errorf("gemini configuration is required when the gemini provider is selected")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, log)
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai configuration is required when the openai provider is selected")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}

		return openaicompat.NewGenerator(apiKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func providerName(cfg *AIConfig) string {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = "gemini"
	}
	return provider
}
