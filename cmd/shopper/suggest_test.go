package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/groceries/internal/suggestions"
)

type blockingService struct {
	started chan struct{}
}

func (b *blockingService) Suggest(ctx context.Context, input suggestions.Input) (suggestions.Output, error) {
	close(b.started)
	<-ctx.Done()
	return suggestions.Output{Suggestions: []string{"late"}}, nil
}

type answerService struct{}

func (answerService) Suggest(ctx context.Context, input suggestions.Input) (suggestions.Output, error) {
	return suggestions.Output{Suggestions: []string{"Rice"}}, nil
}

func TestAskSuggestions(t *testing.T) {
	input := suggestions.NewInput(nil, 20)

	t.Run("Answered", func(t *testing.T) {
		output, err := askSuggestions(context.Background(), suggestions.NewTracker(answerService{}), input)
		require.NoError(t, err)
		assert.Equal(t, []string{"Rice"}, output.Suggestions)
	})

	t.Run("Interrupted", func(t *testing.T) {
		service := &blockingService{started: make(chan struct{})}
		tracker := suggestions.NewTracker(service)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := askSuggestions(ctx, tracker, input)
			done <- err
		}()
		<-service.started
		cancel()
		assert.ErrorIs(t, <-done, suggestions.ErrStale)
	})
}
