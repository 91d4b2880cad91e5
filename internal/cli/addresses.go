package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/output"
)

var addressesCmd = &cobra.Command{
	Use:     "addresses",
	Aliases: []string{"address", "addr"},
	Short:   "Manage shipping addresses",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initApp(cmd.Context()); err != nil {
			return err
		}
		return requireLogin(cmd.Context(), gateway.RealmUser)
	},
}

var addressesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved addresses",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := rt.Addresses.List(cmd.Context())
		if err != nil {
			return err
		}
		p := newPrinter(cmd)
		if len(list) == 0 {
			p.Info("No saved addresses")
			return nil
		}
		t := output.NewTable(p.Out(), []string{"ID", "ADDRESS", "DEFAULT"})
		for _, a := range list {
			def := ""
			if a.IsDefault {
				def = p.Badge(true, "default")
			}
			t.AddRow(strconv.FormatInt(a.ID, 10), a.String(), def)
		}
		return t.Render()
	},
}

var addressesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new address",
	Long: `Save a new shipping address.

Example:
  storefront addresses add --line1 "12 MG Road" --city Pune --state MH \
    --country India --pincode 411001 --default`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var a domain.Address
		a.Line1, _ = f.GetString("line1")
		a.Line2, _ = f.GetString("line2")
		a.City, _ = f.GetString("city")
		a.State, _ = f.GetString("state")
		a.Country, _ = f.GetString("country")
		a.Pincode, _ = f.GetString("pincode")
		a.IsDefault, _ = f.GetBool("default")
		if a.Line1 == "" || a.City == "" || a.Pincode == "" {
			return usageError("--line1, --city and --pincode are required")
		}

		created, err := rt.Addresses.Create(cmd.Context(), a)
		if err != nil {
			return err
		}
		newPrinter(cmd).Success("Saved address %d", created.ID)
		return nil
	},
}

var addressesDeleteCmd = &cobra.Command{
	Use:     "delete <address-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an address",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "address id")
		if err != nil {
			return err
		}
		if err := rt.Addresses.Delete(cmd.Context(), id); err != nil {
			return err
		}
		newPrinter(cmd).Success("Deleted address %d", id)
		return nil
	},
}

var addressesDefaultCmd = &cobra.Command{
	Use:   "default <address-id>",
	Short: "Make an address the default for checkout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "address id")
		if err != nil {
			return err
		}
		if err := rt.Addresses.SetDefault(cmd.Context(), id); err != nil {
			return err
		}
		newPrinter(cmd).Success("Address %d is now the default", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressesCmd)
	addressesCmd.AddCommand(addressesListCmd, addressesAddCmd, addressesDeleteCmd, addressesDefaultCmd)

	f := addressesAddCmd.Flags()
	f.String("line1", "", "street address")
	f.String("line2", "", "apartment, suite, landmark")
	f.String("city", "", "city")
	f.String("state", "", "state")
	f.String("country", "India", "country")
	f.String("pincode", "", "postal code")
	f.Bool("default", false, "use as the default shipping address")
}
