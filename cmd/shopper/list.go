package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"philcali.me/groceries/internal/cli"
	"philcali.me/groceries/internal/shopping"
)

var (
	flagQuantity float64
	flagWeight   bool
)

var budgetCmd = &cobra.Command{
	Use:   "budget <amount>",
	Short: "Set the budget for the current shopping session",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudget,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the shopping list and remaining budget",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add <name> <price>",
	Short: "Add an item to the shopping list",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

var removeCmd = &cobra.Command{
	Use:     "rm <item>",
	Aliases: []string{"remove"},
	Short:   "Remove an item by position or name",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var quantityCmd = &cobra.Command{
	Use:   "qty <item> <quantity>",
	Short: "Change the quantity of an item",
	Args:  cobra.ExactArgs(2),
	RunE:  runQuantity,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the list and budget without saving",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var finalizeCmd = &cobra.Command{
	Use:     "finalize",
	Aliases: []string{"checkout"},
	Short:   "Save the list as a purchase and start over",
	Args:    cobra.NoArgs,
	RunE:    runFinalize,
}

func init() {
	addCmd.Flags().Float64VarP(&flagQuantity, "qty", "q", 1, "Quantity, or kilograms with --weight")
	addCmd.Flags().BoolVarP(&flagWeight, "weight", "w", false, "Item is sold by weight")
	rootCmd.AddCommand(budgetCmd, listCmd, addCmd, removeCmd, quantityCmd, clearCmd, finalizeCmd)
}

func printList(s *session) {
	fmt.Print(renderList(s.store.Budget(), s.store.Items(), s.store.TotalCost(), s.store.RemainingBudget()))
}

func runBudget(_ *cobra.Command, args []string) error {
	value, err := parseAmount("budget", args[0])
	if err != nil {
		return err
	}
	if err := shopping.ValidateBudget(value); err != nil {
		return err
	}
	return withSession(func(ctx context.Context, s *session) error {
		s.store.SetBudget(value)
		printList(s)
		return nil
	})
}

func runList(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		printList(s)
		return nil
	})
}

func runAdd(_ *cobra.Command, args []string) error {
	price, err := parseAmount("price", args[1])
	if err != nil {
		return err
	}
	item := shopping.Item{
		Name:     args[0],
		Price:    price,
		Quantity: flagQuantity,
		Type:     shopping.Unit,
	}
	if flagWeight {
		item.Type = shopping.Weight
	}
	if err := shopping.ValidateItem(item); err != nil {
		return err
	}
	return withSession(func(ctx context.Context, s *session) error {
		if s.store.Budget() == 0 {
			return fmt.Errorf("set a budget first with `shopper budget <amount>`")
		}
		if err := s.store.CheckBudget(item); err != nil {
			if errors.Is(err, shopping.ErrBudgetExceeded) {
				fmt.Println("  " + cli.Warn(err.Error()))
				return nil
			}
			return err
		}
		s.store.AddItem(item)
		printList(s)
		return nil
	})
}

func runRemove(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		if item, ok := findItem(s.store.Items(), args[0]); ok {
			s.store.RemoveItem(item.ID)
		}
		printList(s)
		return nil
	})
}

func runQuantity(_ *cobra.Command, args []string) error {
	quantity, err := parseAmount("quantity", args[1])
	if err != nil {
		return err
	}
	return withSession(func(ctx context.Context, s *session) error {
		item, ok := findItem(s.store.Items(), args[0])
		if !ok {
			return fmt.Errorf("no item %q on the list", args[0])
		}
		item.Quantity = quantity
		if err := shopping.ValidateItem(item); err != nil {
			return err
		}
		s.store.UpdateItem(item)
		printList(s)
		return nil
	})
}

func runClear(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		s.store.ClearList()
		printList(s)
		return nil
	})
}

func runFinalize(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		if len(s.store.Items()) == 0 {
			return fmt.Errorf("the list is empty, nothing to save")
		}
		purchase, err := s.store.FinalizeAndSave(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("  Saved purchase of %d items, %s spent of %s.\n",
			len(purchase.Items), cli.Money(purchase.TotalSpent), cli.Money(purchase.Budget))
		if s.store.Identity() == nil {
			fmt.Println("  " + cli.Muted("Stored on this device only. Sign in to keep your history."))
		}
		return nil
	})
}
