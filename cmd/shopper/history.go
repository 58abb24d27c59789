package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"philcali.me/groceries/internal/shopping"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past purchases, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <purchase>",
	Short: "Show a purchase with price changes against the one before it",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRemoveCmd = &cobra.Command{
	Use:   "rm <purchase>",
	Short: "Permanently delete a purchase",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRemove,
}

func init() {
	historyCmd.AddCommand(historyShowCmd, historyRemoveCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		fmt.Print(renderHistory(s.store.History()))
		return nil
	})
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		history := s.store.History()
		purchase, ok := findPurchase(history, args[0])
		if !ok {
			return fmt.Errorf("no purchase %q in the history", args[0])
		}
		comparisons, _ := shopping.ComparePurchase(history, purchase.ID)
		fmt.Print(renderComparison(purchase, comparisons))
		return nil
	})
}

func runHistoryRemove(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		if purchase, ok := findPurchase(s.store.History(), args[0]); ok {
			if err := s.store.RemovePurchase(ctx, purchase.ID); err != nil {
				return err
			}
		}
		fmt.Print(renderHistory(s.store.History()))
		return nil
	})
}
