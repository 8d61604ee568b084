package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"archeohub-backend/internal/models"
)

var (
	askPersona   string
	askDepth     string
	askTone      string
	askNoSources bool
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the ArcheoHub assistant a question",
	Long: `Sends a question to /api/chat and prints the answer with its sources.
Gateway errors are retried with backoff; other failures are reported as is.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askPersona, "persona", "", "persona the assistant should adopt")
	askCmd.Flags().StringVar(&askDepth, "depth", "", "answer depth: brief, standard or detailed")
	askCmd.Flags().StringVar(&askTone, "tone", "", "tone of the answer")
	askCmd.Flags().BoolVar(&askNoSources, "no-sources", false, "skip the web search step")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the raw JSON response")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	opts := models.ChatOptions{Persona: askPersona, Depth: askDepth, Tone: askTone}
	if askNoSources {
		include := false
		opts.IncludeSources = &include
	}

	resp, err := newClient().Ask(cmd.Context(), question, opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(resp.Text)
	if len(resp.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, s := range resp.Sources {
			title := s.Title
			if title == "" {
				title = s.URL
			}
			cmd.Printf("  [%d] %s\n      %s\n", i+1, title, s.URL)
		}
	}
	return nil
}
