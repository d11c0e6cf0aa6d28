package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/internal/spaced_repetition"
	"github.com/example/wordbox/pkg/models"
	"github.com/spf13/cobra"
)

func init() {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Show the review queue and the next word",
		Args:  cobra.NoArgs,
		RunE:  runReview,
	}

	learnCmd := &cobra.Command{
		Use:   "learn <id>",
		Short: "Mark a word as remembered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, args[0], (*spaced_repetition.Engine).MarkLearned)
		},
	}

	forgetCmd := &cobra.Command{
		Use:   "forget <id>",
		Short: "Mark a word as forgotten",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, args[0], (*spaced_repetition.Engine).MarkForgotten)
		},
	}

	RootCmd.AddCommand(reviewCmd, learnCmd, forgetCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store) error {
		q, err := s.engine.Queue(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "due: %d (high priority %d, normal %d, skipped overall %d)\n",
			q.Len(), len(q.HighPriority), len(q.Normal), len(q.AllSkipped))

		word, ok := spaced_repetition.SelectNext(q)
		if !ok {
			fmt.Fprintln(out, "nothing to review")
			return nil
		}
		fmt.Fprintf(out, "next: %d %s (box %d)\n", word.ID, word.English, word.LeitnerBox)
		return nil
	})
}

type transition func(e *spaced_repetition.Engine, ctx context.Context, w models.Word) (models.Word, error)

func runTransition(cmd *cobra.Command, arg string, apply transition) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	return withStore(cmd, func(ctx context.Context, s *store) error {
		word, err := s.words.GetByID(ctx, id)
		if errors.Is(err, database.ErrWordNotFound) || (err == nil && word.IsDeleted) {
			return fmt.Errorf("word %d not found", id)
		}
		if err != nil {
			return err
		}

		updated, err := apply(s.engine, ctx, *word)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: box %d, next review %s\n",
			updated.English, updated.LeitnerBox, updated.NextReviewDate.Format("2006-01-02 15:04"))
		return nil
	})
}
