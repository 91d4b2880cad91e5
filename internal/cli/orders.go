package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/output"
)

var ordersCmd = &cobra.Command{
	Use:     "orders",
	Aliases: []string{"order"},
	Short:   "Your orders, returns and exchanges",
}

var ordersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every order",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := requireLogin(ctx, gateway.RealmUser); err != nil {
			return err
		}
		orders, err := rt.Orders.ListAll(ctx)
		if err != nil {
			return err
		}

		p := newPrinter(cmd)
		if len(orders) == 0 {
			p.Info("No orders yet")
			return nil
		}
		t := output.NewTable(p.Out(), []string{"ORDER", "DATE", "ITEMS", "PAYMENT", "SHIPPING", "TOTAL"})
		for _, o := range orders {
			date := ""
			if !o.OrderDate.IsZero() {
				date = o.OrderDate.Local().Format("2006-01-02")
			}
			t.AddRow(
				"#"+strconv.FormatInt(o.ID, 10),
				date,
				itoa(len(o.Items)),
				string(o.PaymentMethod),
				string(o.ShippingMethod),
				o.Total().StringFixed(2),
			)
		}
		return t.Render()
	},
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show an order and its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0], "order id")
		if err != nil {
			return err
		}
		if err := requireLogin(ctx, gateway.RealmUser); err != nil {
			return err
		}
		order, err := rt.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		items := order.Items
		if len(items) == 0 {
			if items, err = rt.Orders.Items(ctx, id); err != nil {
				return err
			}
		}

		p := newPrinter(cmd)
		p.Header("Order #" + args[0])
		if order.ShippingAddress != nil {
			p.Print("Ship to: %s", order.ShippingAddress.String())
		}
		t := output.NewTable(p.Out(), []string{"ITEM", "PRODUCT", "QTY", "PRICE", "STATUS"})
		for _, it := range items {
			name := it.Product.Name
			if name == "" {
				name = it.ProductName
			}
			status := it.ReturnStatus
			if it.IsExchanged {
				status = "exchanged"
			}
			t.AddRow(strconv.FormatInt(it.ID, 10), name, itoa(it.OrderQuantity), it.ProductPrice.StringFixed(2), status)
		}
		return t.Render()
	},
}

var ordersReturnCmd = &cobra.Command{
	Use:   "return <item-id> <reason...>",
	Short: "Request a return for an order item",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0], "item id")
		if err != nil {
			return err
		}
		if err := requireLogin(ctx, gateway.RealmUser); err != nil {
			return err
		}
		if _, err := rt.Orders.ReturnItem(ctx, id, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		newPrinter(cmd).Success("Return requested for item %d", id)
		return nil
	},
}

var ordersExchangeCmd = &cobra.Command{
	Use:   "exchange <item-id>",
	Short: "Request an exchange for an order item",
	Long: `Request an exchange, then grade the item with
` + "`storefront exchange grade`" + ` and book a pickup with ` + "`storefront exchange pickup`" + `.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0], "item id")
		if err != nil {
			return err
		}
		if err := requireLogin(ctx, gateway.RealmUser); err != nil {
			return err
		}
		if _, err := rt.Orders.ExchangeItem(ctx, id); err != nil {
			return err
		}
		p := newPrinter(cmd)
		p.Success("Exchange requested for item %d", id)
		p.Info("Next: storefront exchange grade %d <photo>", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd, ordersShowCmd, ordersReturnCmd, ordersExchangeCmd)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
