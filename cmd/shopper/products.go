package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"philcali.me/groceries/internal/cli"
	"philcali.me/groceries/internal/shopping"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List your saved product names",
	Args:  cobra.NoArgs,
	RunE:  runProducts,
}

var productsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a product name for quick entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductsAdd,
}

func init() {
	productsAddCmd.Flags().BoolVarP(&flagWeight, "weight", "w", false, "Product is sold by weight")
	productsCmd.AddCommand(productsAddCmd)
	rootCmd.AddCommand(productsCmd)
}

func runProducts(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		products, err := s.catalog.List(ctx, s.store.Identity())
		if err != nil {
			return err
		}
		rows := make([][]string, len(products))
		for i, p := range products {
			rows[i] = []string{p.Name, string(p.Type)}
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Products",
			Headers: []string{"Name", "Type"},
			Rows:    rows,
		}))
		return nil
	})
}

func runProductsAdd(_ *cobra.Command, args []string) error {
	product := shopping.Product{Name: args[0], Type: shopping.Unit}
	if flagWeight {
		product.Type = shopping.Weight
	}
	return withSession(func(ctx context.Context, s *session) error {
		saved, err := s.catalog.AddProduct(ctx, s.store.Identity(), product)
		if err != nil {
			return err
		}
		fmt.Printf("  Saved %s.\n", saved.Name)
		return nil
	})
}
