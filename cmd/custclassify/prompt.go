package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/custclassify/internal/ai"
	"github.com/amishk599/custclassify/internal/prompt"
)

var promptOpts inputOptions

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the messages classify would send, without calling the API",
	Long:  "Renders the system and user messages for the given inputs and prints them. No credentials are needed.",
	Args:  cobra.NoArgs,
	RunE:  runPrompt,
}

func init() {
	addInputFlags(promptCmd, &promptOpts)
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(promptOpts.provider, promptOpts.model)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	messages, err := prompt.NewBuilder().Messages(buildRequest(cfg.Defaults, promptOpts))
	if err != nil {
		logger.Error("failed to render prompt", "error", err)
		os.Exit(1)
	}

	logger.Debug("rendered prompt", "provider", cfg.Provider, "model", cfg.Model)
	return writeMessages(os.Stdout, messages)
}

func writeMessages(w io.Writer, messages []ai.Message) error {
	for i, m := range messages {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "[%s]\n%s\n", m.Role, m.Content); err != nil {
			return err
		}
	}
	return nil
}
