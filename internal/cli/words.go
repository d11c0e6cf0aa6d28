package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/pkg/models"
	"github.com/spf13/cobra"
)

func init() {
	addCmd := &cobra.Command{
		Use:   "add <english> <persian...>",
		Short: "Add a word",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runAdd,
	}

	listCmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List words, optionally filtered",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runList,
	}

	editCmd := &cobra.Command{
		Use:   "edit <id> <english> <persian...>",
		Short: "Change the text of a word",
		Args:  cobra.MinimumNArgs(3),
		RunE:  runEdit,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a word",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}

	RootCmd.AddCommand(addCmd, listCmd, editCmd, rmCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store) error {
		word := models.NewWord(args[0], strings.Join(args[1:], " "), time.Now())
		if err := s.words.Create(ctx, &word); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d: %s - %s\n", word.ID, word.English, word.Persian)
		return nil
	})
}

func runList(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store) error {
		var (
			words []models.Word
			err   error
		)
		if len(args) == 1 {
			words, err = s.words.Search(ctx, args[0])
		} else {
			words, err = s.words.GetAll(ctx)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, w := range words {
			flag := ""
			if w.IsSkipped {
				flag = " *"
			}
			fmt.Fprintf(out, "%d\t%s\t%s\tbox %d\tnext %s%s\n",
				w.ID, w.English, w.Persian, w.LeitnerBox, w.NextReviewDate.Format("2006-01-02 15:04"), flag)
		}
		fmt.Fprintf(out, "%d words\n", len(words))
		return nil
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
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

		word.English = args[1]
		word.Persian = strings.Join(args[2:], " ")
		if err := s.words.Update(ctx, word); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %d: %s - %s\n", word.ID, word.English, word.Persian)
		return nil
	})
}

func runRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withStore(cmd, func(ctx context.Context, s *store) error {
		soft, err := s.words.Remove(ctx, id, false)
		if errors.Is(err, database.ErrWordNotFound) {
			return fmt.Errorf("word %d not found", id)
		}
		if err != nil {
			return err
		}
		if soft {
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d (kept for stats)\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
		}
		return nil
	})
}
