package cli

import (
	"context"
	"fmt"
	"time"

	"guessgame-service/internal/config"
	"guessgame-service/internal/game"
	"github.com/spf13/cobra"
)

// cacheInvalidator is implemented by the question caches.
type cacheInvalidator interface {
	Invalidate(ctx context.Context, setID string) error
}

// NewQuestionsCmd loads the configured question set and prints it, so content
// files can be checked before a game.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	var (
		setID   string
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Validate and list the configured question set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(pickLevel(logLevel, cfg.Log.Level))
			if setID == "" {
				setID = cfg.Game.QuestionSet
			}

			deps, err := buildDeps(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer deps.close()

			if refresh {
				if cache, ok := deps.questions.(cacheInvalidator); ok {
					if err := cache.Invalidate(cmd.Context(), setID); err != nil {
						return fmt.Errorf("invalidate cached set: %w", err)
					}
					logger.Info("cached question set dropped", "set", setID)
				}
			}

			raw, err := deps.questions.GetQuestions(cmd.Context(), setID)
			if err != nil {
				return err
			}
			set := game.NewQuestionSet(raw)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "set %q: %d questions (%d skipped without answers)\n", setID, set.Len(), len(raw)-set.Len())
			for set.AdvanceCursor() {
				q, _ := set.Current()
				fmt.Fprintf(out, "%3d  %-40s answers=%q hints=%d\n", set.Index()+1, q.ImageRef, q.Answers, len(q.Hints))
			}
			fmt.Fprintf(out, "advance delay: %s\n", config.TTLDuration(cfg.Game.AdvanceDelay, game.DefaultAdvanceDelay).Round(time.Second))
			return nil
		},
	}
	cmd.Flags().StringVar(&setID, "set", "", "question set id (defaults to game.question_set)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop the cached set and reload it from its source")
	return cmd
}
