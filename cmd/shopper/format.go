package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"philcali.me/groceries/internal/cli"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/shopping"
)

// parseAmount reads a user supplied number, rejecting anything that is not a
// finite positive value.
func parseAmount(field string, raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, exceptions.InvalidInput(fmt.Sprintf("%s must be a positive number, got %q", field, raw))
	}
	return value, nil
}

// findItem resolves an item by its 1-based position in the list or by name,
// ignoring case. The first matching line wins.
func findItem(items []shopping.Item, ref string) (shopping.Item, bool) {
	if index, err := strconv.Atoi(ref); err == nil {
		if index >= 1 && index <= len(items) {
			return items[index-1], true
		}
		return shopping.Item{}, false
	}
	for _, item := range items {
		if strings.EqualFold(item.Name, strings.TrimSpace(ref)) {
			return item, true
		}
	}
	return shopping.Item{}, false
}

// findPurchase resolves a purchase by its 1-based position in the history,
// newest first, or by id.
func findPurchase(history []shopping.Purchase, ref string) (shopping.Purchase, bool) {
	if index, err := strconv.Atoi(ref); err == nil && index >= 1 && index <= len(history) {
		return history[index-1], true
	}
	for _, p := range history {
		if p.ID == ref {
			return p, true
		}
	}
	return shopping.Purchase{}, false
}

func renderList(budget float64, items []shopping.Item, total float64, remaining float64) string {
	if budget == 0 && len(items) == 0 {
		return "  No shopping session. Start one with `shopper budget <amount>`.\n"
	}
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{
			fmt.Sprintf("%d. %s", i+1, item.Name),
			cli.Quantity(item.Quantity) + " " + string(item.Type),
			cli.Money(item.Price),
			cli.Money(item.Cost()),
		}
	}
	var b strings.Builder
	b.WriteString(cli.RenderTable(cli.Table{
		Title:   "Shopping list",
		Headers: []string{"Item", "Qty", "Price", "Cost"},
		Rows:    rows,
	}))
	fmt.Fprintf(&b, "  Budget:    %s\n", cli.Money(budget))
	fmt.Fprintf(&b, "  Total:     %s\n", cli.Money(total))
	if remaining < 0 {
		fmt.Fprintf(&b, "  Remaining: %s\n", cli.Error(cli.Money(remaining)+" over budget"))
	} else {
		fmt.Fprintf(&b, "  Remaining: %s\n", cli.OK(cli.Money(remaining)))
	}
	return b.String()
}

func renderHistory(history []shopping.Purchase) string {
	if len(history) == 0 {
		return "  No purchases yet.\n"
	}
	rows := make([][]string, len(history))
	for i, p := range history {
		rows[i] = []string{
			fmt.Sprintf("%d. %s", i+1, p.Time().Format(time.DateTime)),
			strconv.Itoa(len(p.Items)),
			cli.Money(p.Budget),
			cli.Money(p.TotalSpent),
		}
	}
	return cli.RenderTable(cli.Table{
		Title:   "Purchase history",
		Headers: []string{"Date", "Items", "Budget", "Spent"},
		Rows:    rows,
	})
}

func trendLabel(c shopping.PriceComparison) string {
	percentage := strconv.FormatFloat(c.Percentage, 'f', 1, 64) + "%"
	switch c.Trend {
	case shopping.Increased:
		return cli.Warn("▲ " + cli.Money(math.Abs(c.Diff)) + " (" + percentage + ")")
	case shopping.Decreased:
		return cli.OK("▼ " + cli.Money(math.Abs(c.Diff)) + " (" + percentage + ")")
	case shopping.Unchanged:
		return cli.Muted("= unchanged")
	default:
		return cli.Muted("new")
	}
}

func renderComparison(purchase shopping.Purchase, comparisons []shopping.PriceComparison) string {
	rows := make([][]string, len(comparisons))
	for i, c := range comparisons {
		previous := "-"
		if c.PreviousPrice != nil {
			previous = cli.Money(*c.PreviousPrice)
		}
		rows[i] = []string{
			c.Item.Name,
			cli.Quantity(c.Item.Quantity),
			cli.Money(c.Item.Price),
			previous,
			trendLabel(c),
		}
	}
	var b strings.Builder
	b.WriteString(cli.RenderTable(cli.Table{
		Title:   "Purchase of " + purchase.Time().Format(time.DateTime),
		Headers: []string{"Item", "Qty", "Price", "Previous", "Change"},
		Rows:    rows,
	}))
	fmt.Fprintf(&b, "  Budget: %s  Spent: %s\n", cli.Money(purchase.Budget), cli.Money(purchase.TotalSpent))
	return b.String()
}
