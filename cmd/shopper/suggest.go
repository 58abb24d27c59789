package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"philcali.me/groceries/internal/cli"
	"philcali.me/groceries/internal/suggestions"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask for items to add given the list and remaining budget",
	Args:  cobra.NoArgs,
	RunE:  runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		input := suggestions.NewInput(s.store.Items(), s.store.Budget())
		interrupted, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		output, err := askSuggestions(interrupted, s.suggestions, input)
		if errors.Is(err, suggestions.ErrStale) {
			fmt.Println("  " + cli.Muted("Cancelled."))
			return nil
		}
		if errors.Is(err, suggestions.ErrUnavailable) {
			fmt.Println("  " + cli.Warn(err.Error()))
			return nil
		}
		if err != nil {
			return err
		}
		if len(output.Suggestions) == 0 {
			fmt.Println("  Nothing to suggest.")
			return nil
		}
		fmt.Printf("  Suggestions with %s left:\n", cli.Money(input.RemainingBudget))
		for _, suggestion := range output.Suggestions {
			fmt.Println("  - " + suggestion)
		}
		return nil
	})
}

// askSuggestions drops the pending answer once ctx is done, so an interrupted
// request never prints.
func askSuggestions(ctx context.Context, tracker *suggestions.Tracker, input suggestions.Input) (suggestions.Output, error) {
	done := make(chan struct{})
	cancelled := make(chan bool, 1)
	go func() {
		select {
		case <-ctx.Done():
			tracker.Cancel()
			cancelled <- true
		case <-done:
			cancelled <- false
		}
	}()
	output, err := tracker.Suggest(ctx, input)
	close(done)
	if <-cancelled {
		return suggestions.Output{}, suggestions.ErrStale
	}
	return output, err
}
