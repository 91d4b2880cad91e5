package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

const pickupDateLayout = "2006-01-02"

var exchangeCmd = &cobra.Command{
	Use:   "exchange",
	Short: "Grade an exchanged item and book its pickup",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initApp(cmd.Context()); err != nil {
			return err
		}
		return requireLogin(cmd.Context(), gateway.RealmUser)
	},
}

var exchangeGradeCmd = &cobra.Command{
	Use:   "grade <item-id> <photo>",
	Short: "Upload a photo of the item to grade its condition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "item id")
		if err != nil {
			return err
		}
		photo, err := loadPhoto(args[1])
		if err != nil {
			return err
		}

		result, err := rt.Exchange.GradeCondition(cmd.Context(), id, photo)
		if err != nil {
			return err
		}

		p := newPrinter(cmd)
		p.Success("Condition: %s", p.Bold(string(result.Status)))
		if result.Message != "" {
			p.Print("%s", result.Message)
		}
		if result.Status.NeedsPickup() {
			first, _ := rt.Exchange.PickupWindow()
			p.Info("Next: storefront exchange pickup %d --grade %s --date %s --time 10:00",
				id, result.Status, first.Format(pickupDateLayout))
		} else {
			p.Info("Next: storefront exchange pickup %d --grade %s", id, result.Status)
		}
		return nil
	},
}

var exchangePickupCmd = &cobra.Command{
	Use:   "pickup <item-id>",
	Short: "Confirm the exchange and schedule a pickup",
	Long: `Confirm the exchange. Resale and refurb items need a pickup date between
tomorrow and a week from today and a time between 09:00 and 21:00.
Scrapped items need neither.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "item id")
		if err != nil {
			return err
		}
		grade, _ := cmd.Flags().GetString("grade")
		date, _ := cmd.Flags().GetString("date")
		at, _ := cmd.Flags().GetString("time")

		g := domain.ConditionGrade(grade)
		switch g {
		case domain.GradeResale, domain.GradeRefurb, domain.GradeScrap:
		default:
			return usageError("--grade must be resale, refurb or scrap")
		}

		resp, err := rt.Exchange.SchedulePickup(cmd.Context(), service.PickupOptions{
			OrderDetailID: id,
			Grade:         g,
			Date:          date,
			Time:          at,
		})
		if err != nil {
			return err
		}

		p := newPrinter(cmd)
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("Exchange confirmed for item %d", id)
		}
		p.Success("%s", msg)
		if resp.PickupDate != "" {
			p.Print("Pickup on %s at %s", resp.PickupDate, resp.PickupTime)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exchangeCmd)
	exchangeCmd.AddCommand(exchangeGradeCmd, exchangePickupCmd)

	exchangePickupCmd.Flags().String("grade", "", "condition from `exchange grade`: resale, refurb or scrap")
	exchangePickupCmd.Flags().String("date", "", "pickup date, YYYY-MM-DD")
	exchangePickupCmd.Flags().String("time", "", "pickup time, HH:MM")
	_ = exchangePickupCmd.MarkFlagRequired("grade")
}

func loadPhoto(path string) (service.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return service.Photo{}, usageError(fmt.Sprintf("cannot read photo: %v", err))
	}
	return service.Photo{
		FileName:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}
