package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/custclassify/internal/classify"
	"github.com/amishk599/custclassify/internal/config"
	"github.com/amishk599/custclassify/internal/model"
	"github.com/amishk599/custclassify/internal/prompt"
	"github.com/amishk599/custclassify/internal/tui"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// inputOptions are the request values and model selection shared by
// classify and prompt.
type inputOptions struct {
	customer   string
	industry   string
	categories []string
	provider   string
	model      string
}

type classifyOptions struct {
	inputOptions
	explain  bool
	output   string
	progress bool
}

var classifyOpts classifyOptions

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a customer and print the category",
	Long: "Builds the classification prompt, sends it to the configured model once,\n" +
		"and prints the chosen category on stdout. Values not given as flags come\n" +
		"from the defaults section of the config file.",
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, classifyCmd} {
		addInputFlags(cmd, &classifyOpts.inputOptions)
		cmd.Flags().BoolVar(&classifyOpts.explain, "explain", false, "also print the model's explanation")
		cmd.Flags().StringVarP(&classifyOpts.output, "output", "o", outputText, "output format: text or json")
		cmd.Flags().BoolVar(&classifyOpts.progress, "progress", false, "show a spinner on stderr while the model runs")
	}
	rootCmd.AddCommand(classifyCmd)
}

func addInputFlags(cmd *cobra.Command, o *inputOptions) {
	cmd.Flags().StringVar(&o.customer, "customer", "", "customer description")
	cmd.Flags().StringVar(&o.industry, "industry", "", "industry the categories apply to")
	cmd.Flags().StringArrayVar(&o.categories, "category", nil, "candidate category (repeatable, order is kept)")
	cmd.Flags().StringVar(&o.provider, "provider", "", "model provider: anthropic or openai")
	cmd.Flags().StringVar(&o.model, "model", "", "model identifier")
}

// buildRequest merges flag values over the configured defaults.
func buildRequest(defaults config.DefaultsConfig, o inputOptions) model.ClassificationRequest {
	req := model.ClassificationRequest{
		CustomerInformation: defaults.CustomerInformation,
		Industry:            defaults.Industry,
		Categories:          model.Categories(defaults.Categories),
	}
	if o.customer != "" {
		req.CustomerInformation = o.customer
	}
	if o.industry != "" {
		req.Industry = o.industry
	}
	if len(o.categories) > 0 {
		req.Categories = model.Categories(o.categories)
	}
	return req
}

func runClassify(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := classifyOnce(ctx, classifyOpts, os.Stdout, logger); err != nil {
		logClassifyError(logger, err)
		stop()
		os.Exit(1)
	}
	return nil
}

func classifyOnce(ctx context.Context, o classifyOptions, out io.Writer, logger *slog.Logger) error {
	if o.output != outputText && o.output != outputJSON {
		return fmt.Errorf("%w: --output must be %q or %q, got %q", config.ErrInvalid, outputText, outputJSON, o.output)
	}

	cfg, err := loadConfig(o.provider, o.model)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	provider, err := setupProvider(cfg, logger)
	if err != nil {
		return err
	}
	st, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer st.Close()

	classifier := classify.NewClassifier(
		provider,
		classify.Source{Provider: cfg.Provider, Model: cfg.Model},
		prompt.NewBuilder(),
		st,
		logger,
	)
	req := buildRequest(cfg.Defaults, o.inputOptions)

	var result model.ClassificationResult
	if o.progress {
		label := fmt.Sprintf("Classifying with %s", cfg.Model)
		result, err = tui.RunLoader(ctx, os.Stderr, label, func(ctx context.Context) (model.ClassificationResult, error) {
			return classifier.Classify(ctx, req)
		})
	} else {
		result, err = classifier.Classify(ctx, req)
	}
	if err != nil {
		return err
	}

	return writeResult(out, result, o.output, o.explain)
}

// writeResult prints the category on its own line. JSON output always
// carries the explanation.
func writeResult(w io.Writer, result model.ClassificationResult, format string, explain bool) error {
	if format == outputJSON {
		return json.NewEncoder(w).Encode(result)
	}
	if _, err := fmt.Fprintln(w, result.Category); err != nil {
		return err
	}
	if explain {
		_, err := fmt.Fprintln(w, result.Explanation)
		return err
	}
	return nil
}

// logClassifyError logs err once with a message naming its class.
func logClassifyError(logger *slog.Logger, err error) {
	var apiErr *model.APIError
	switch {
	case errors.Is(err, config.ErrInvalid):
		logger.Error("invalid configuration", "error", err)
	case errors.As(err, &apiErr) && apiErr.IsAuth():
		logger.Error("authentication failed", "provider", apiErr.Provider, "status", apiErr.StatusCode, "error", err)
	case errors.As(err, &apiErr):
		logger.Error("model request failed", "provider", apiErr.Provider, "status", apiErr.StatusCode, "error", err)
	case errors.Is(err, model.ErrParse):
		logger.Error("model returned an unusable response", "error", err)
	case errors.Is(err, context.Canceled), errors.Is(err, tui.ErrCancelled):
		logger.Error("cancelled")
	default:
		logger.Error("classification failed", "error", err)
	}
}
