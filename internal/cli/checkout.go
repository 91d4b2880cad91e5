package cli

import (
	"github.com/spf13/cobra"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/output"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the cart",
	Long: `Place an order for everything in the cart.

Prepaid methods get 5% off; COD pays in full. Shipping is free for Standard,
99 for Express and 199 for Next-Day.

Examples:
  storefront checkout --quote
  storefront checkout --payment COD --shipping Express
  storefront checkout --address 12`,
	Args: cobra.NoArgs,
	RunE: runCheckout,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)

	checkoutCmd.Flags().Int64("address", 0, "shipping address id (default: your default address)")
	checkoutCmd.Flags().String("payment", string(domain.PaymentCreditCard), "Credit Card, Debit Card, PayPal, Gift Card or COD")
	checkoutCmd.Flags().String("shipping", string(domain.ShippingStandard), "Standard, Express or Next-Day")
	checkoutCmd.Flags().Bool("quote", false, "show the price breakdown without ordering")
}

func runCheckout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p := newPrinter(cmd)

	payment, _ := cmd.Flags().GetString("payment")
	shipping, _ := cmd.Flags().GetString("shipping")
	req := service.CheckoutRequest{
		PaymentMethod:  domain.PaymentMethod(payment),
		ShippingMethod: domain.ShippingMethod(shipping),
	}

	if quoteOnly, _ := cmd.Flags().GetBool("quote"); quoteOnly {
		quote, err := rt.Checkout.Quote(req.PaymentMethod, req.ShippingMethod)
		if err != nil {
			return err
		}
		return printQuote(p, quote)
	}

	if rt.Cart.IsEmpty() {
		return service.ErrEmptyCart
	}
	if err := requireLogin(ctx, gateway.RealmUser); err != nil {
		return err
	}

	req.AddressID, _ = cmd.Flags().GetInt64("address")
	if req.AddressID == 0 {
		addr, err := rt.Addresses.Default(ctx)
		if err != nil {
			return err
		}
		if addr == nil {
			return &output.CLIError{
				Summary:    service.ErrAddressRequired.Error(),
				Suggestion: "add one with `storefront addresses add` or pass --address",
				ExitCode:   output.ExitUsageError,
			}
		}
		req.AddressID = addr.ID
		p.Info("Shipping to %s", addr.String())
	}

	res, err := rt.Checkout.PlaceOrder(ctx, req)
	if err != nil {
		return err
	}
	if err := printQuote(p, res.Quote); err != nil {
		return err
	}
	p.Success("Order #%d placed", res.Order.ID)
	return nil
}

func printQuote(p *output.Printer, q service.Quote) error {
	p.Header("Order summary")
	t := output.NewTable(p.Out(), []string{"", "AMOUNT"})
	t.AddRow("items", itoa(q.ItemCount))
	t.AddRow("subtotal", q.Subtotal.StringFixed(2))
	if q.PrepaidDiscount.IsPositive() {
		t.AddRow("prepaid discount", "-"+q.PrepaidDiscount.StringFixed(2))
	}
	t.AddRow("shipping ("+string(q.ShippingMethod)+")", q.Shipping.StringFixed(2))
	t.AddRow("total", p.Bold(q.Total.StringFixed(2)))
	return t.Render()
}
