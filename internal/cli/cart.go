package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/THE-DEEPDAS/HTT/internal/output"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the local cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCart(newPrinter(cmd))
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "product id")
		if err != nil {
			return err
		}
		qty, _ := cmd.Flags().GetInt("qty")

		product, err := rt.Products.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !product.InStock() {
			return usageError(product.Name + " is out of stock")
		}
		line := rt.Cart.AddToCart(cmd.Context(), *product, qty)
		newPrinter(cmd).Success("%s ×%d in cart", product.Name, line.Quantity)
		return nil
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <product-id> <quantity>",
	Short: "Set the quantity of a cart line (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "product id")
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return usageError("quantity must be a number")
		}
		if _, ok := rt.Cart.Line(id); !ok {
			newPrinter(cmd).Warning("Product %d is not in the cart", id)
			return nil
		}
		rt.Cart.UpdateQuantity(cmd.Context(), id, qty)
		return printCart(newPrinter(cmd))
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:     "remove <product-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a product from the cart",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "product id")
		if err != nil {
			return err
		}
		rt.Cart.RemoveFromCart(cmd.Context(), id)
		newPrinter(cmd).Success("Removed product %d", id)
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt.Cart.ClearCart(cmd.Context())
		newPrinter(cmd).Success("Cart cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd)

	cartAddCmd.Flags().IntP("qty", "q", 1, "quantity to add")
}

func printCart(p *output.Printer) error {
	lines := rt.Cart.Lines()
	if len(lines) == 0 {
		p.Info("Your cart is empty")
		return nil
	}

	p.Header("Cart")
	t := output.NewTable(p.Out(), []string{"ID", "PRODUCT", "PRICE", "QTY", "SUBTOTAL"})
	for _, l := range lines {
		t.AddRow(
			strconv.FormatInt(l.ProductID, 10),
			l.Product.Name,
			l.UnitPrice().StringFixed(2),
			strconv.Itoa(l.Quantity),
			l.Subtotal().StringFixed(2),
		)
	}
	if err := t.Render(); err != nil {
		return err
	}
	p.Print("%d items, total %s", rt.Cart.Count(), p.Bold(rt.Cart.Total().StringFixed(2)))
	return nil
}
