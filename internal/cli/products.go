package cli

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/output"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product", "p"},
	Short:   "Browse the catalogue",
}

var productsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List products",
	Long: `List products, optionally filtered by price and category.

Examples:
  storefront products list
  storefront products list --min 100 --max 500
  storefront products list --category kitchen`,
	Args: cobra.NoArgs,
	RunE: runProductsList,
}

var productsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search products by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := rt.Products.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printProducts(newPrinter(cmd), products)
	},
}

var productsShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "product id")
		if err != nil {
			return err
		}
		product, err := rt.Products.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printProduct(newPrinter(cmd), product)
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsSearchCmd, productsShowCmd)

	productsListCmd.Flags().String("min", "", "minimum price")
	productsListCmd.Flags().String("max", "", "maximum price")
	productsListCmd.Flags().String("category", "", "category")
	productsListCmd.Flags().Int("page-size", service.DefaultPageSize, "products per page")
}

func runProductsList(cmd *cobra.Command, args []string) error {
	var filter service.ProductFilter
	for flag, dst := range map[string]**decimal.Decimal{"min": &filter.MinPrice, "max": &filter.MaxPrice} {
		raw, _ := cmd.Flags().GetString(flag)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return usageError("--" + flag + " must be a number")
		}
		*dst = &d
	}
	filter.Category, _ = cmd.Flags().GetString("category")
	filter.PageSize, _ = cmd.Flags().GetInt("page-size")

	products, err := rt.Products.List(cmd.Context(), filter)
	if err != nil {
		return err
	}
	return printProducts(newPrinter(cmd), products)
}

func printProducts(p *output.Printer, products []domain.Product) error {
	if len(products) == 0 {
		p.Info("No products found")
		return nil
	}
	t := output.NewTable(p.Out(), []string{"ID", "PRODUCT", "PRICE", "STOCK"})
	for _, pr := range products {
		t.AddRow(strconv.FormatInt(pr.ID, 10), p.Bold(pr.Name), priceLabel(pr), stockLabel(p, pr))
	}
	return t.Render()
}

func printProduct(p *output.Printer, pr *domain.Product) error {
	p.Header(pr.Name)
	if pr.Description != "" {
		p.Print("%s", pr.Description)
	}
	t := output.NewTable(p.Out(), []string{"FIELD", "VALUE"})
	t.AddRow("id", strconv.FormatInt(pr.ID, 10))
	t.AddRow("price", priceLabel(*pr))
	if pr.Category != "" {
		t.AddRow("category", pr.Category)
	}
	t.AddRow("stock", stockLabel(p, *pr))
	return t.Render()
}

func priceLabel(pr domain.Product) string {
	unit := pr.UnitPrice()
	if unit.Equal(pr.BasePrice) {
		return unit.StringFixed(2)
	}
	return unit.StringFixed(2) + " (was " + pr.BasePrice.StringFixed(2) + ")"
}

func stockLabel(p *output.Printer, pr domain.Product) string {
	if !pr.InStock() {
		return p.Badge(false, "out of stock")
	}
	return p.Badge(true, strconv.Itoa(pr.StockQuantity))
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(what + " must be a positive integer")
	}
	return id, nil
}
