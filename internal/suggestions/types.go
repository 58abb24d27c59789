// Package suggestions asks a language model for items to add to the list.
package suggestions

import (
	"context"
	"errors"
	"strings"

	"philcali.me/groceries/internal/shopping"
)

const MaxSuggestions = 5

var (
	// ErrUnavailable is the only failure callers see; the cause is logged.
	ErrUnavailable = errors.New("suggestions are unavailable right now")
	// ErrStale marks the answer to a request that a newer request replaced.
	ErrStale = errors.New("suggestion request was superseded")
)

type InputItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Type     string  `json:"type"`
}

type Input struct {
	Items           []InputItem `json:"items"`
	Budget          float64     `json:"budget"`
	RemainingBudget float64     `json:"remainingBudget"`
}

type Output struct {
	Suggestions []string `json:"suggestions"`
}

type Service interface {
	Suggest(ctx context.Context, input Input) (Output, error)
}

func NewInput(items []shopping.Item, budget float64) Input {
	input := Input{
		Items:           make([]InputItem, len(items)),
		Budget:          budget,
		RemainingBudget: budget - shopping.TotalCost(items),
	}
	for i, item := range items {
		input.Items[i] = InputItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Type:     string(item.Type),
		}
	}
	return input
}

// Filter trims the raw answer: blanks and items already on the list (any
// case) are dropped, duplicates collapse and at most limit entries remain.
func Filter(raw []string, input Input, limit int) []string {
	seen := make(map[string]bool, len(input.Items)+len(raw))
	for _, item := range input.Items {
		seen[strings.ToLower(strings.TrimSpace(item.Name))] = true
	}
	kept := make([]string, 0, limit)
	for _, suggestion := range raw {
		suggestion = strings.TrimSpace(suggestion)
		key := strings.ToLower(suggestion)
		if suggestion == "" || seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, suggestion)
		if len(kept) == limit {
			break
		}
	}
	return kept
}
