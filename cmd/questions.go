package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/skiquiz/internal/authoring"
	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/llm"
	"github.com/abhisek/skiquiz/internal/store"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Author trivia questions",
}

var questionsDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft new questions with an LLM",
	Long: "Draft new multiple-choice questions with the configured LLM provider. " +
		"Output is a content pack fragment to review before loading with --content.",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		topic, _ := cmd.Flags().GetString("topic")
		out, _ := cmd.Flags().GetString("out")
		parallel, _ := cmd.Flags().GetInt("parallel")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		pack, err := content.Load(cfg.Content.Path)
		if err != nil {
			return fmt.Errorf("load content: %w", err)
		}

		var journal llm.Journal
		if s, err := openStore(cmd); err != nil {
			fmt.Fprintln(os.Stderr, "warning: LLM calls will not be journaled:", err)
		} else {
			defer s.Close()
			journal = s.EventRepo()
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		provider, err := llm.NewProvider(ctx, llm.ConfigFromEnv(), journal)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		gen := authoring.NewLLMGenerator(provider, authoring.DefaultConfig(pack.Questions))
		avoid := make([]string, len(pack.Questions))
		for i, q := range pack.Questions {
			avoid[i] = q.Text
		}

		fmt.Fprintf(os.Stderr, "Drafting %d questions with %s...\n", count, provider.ModelID())
		qs, err := authoring.DraftBatch(ctx, gen, authoring.Input{Topic: topic, Avoid: avoid}, count, parallel)
		if err != nil {
			return fmt.Errorf("draft questions: %w", err)
		}

		data, err := authoring.MarshalDrafts(qs)
		if err != nil {
			return err
		}
		if out == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := store.EnsureDir(out); err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d drafts to %s\n", len(qs), out)
		return nil
	},
}

func init() {
	f := questionsDraftCmd.Flags()
	f.Int("count", 5, "Number of questions to draft")
	f.String("topic", "", "Narrow the drafts to a topic, e.g. \"Olympic slalom\"")
	f.String("out", "", "Write the drafts to this file instead of stdout")
	f.Int("parallel", 3, "Maximum concurrent LLM calls")
	questionsCmd.AddCommand(questionsDraftCmd)
}
