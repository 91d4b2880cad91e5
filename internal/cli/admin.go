package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/output"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Store administration",
}

var adminLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with an admin account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}
		if _, err := rt.Auth.AdminLogin(cmd.Context(), email, password); err != nil {
			return describeFor(gateway.RealmAdmin, err)
		}
		newPrinter(cmd).Success("Admin session started")
		return nil
	},
}

var adminLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the admin session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.Auth.AdminLogout(cmd.Context()); err != nil {
			return err
		}
		newPrinter(cmd).Success("Admin logged out")
		return nil
	},
}

var adminAnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show return and exchange analytics",
	Args:  cobra.NoArgs,
	RunE:  runAdminAnalytics,
}

var adminChatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List support chat sessions",
	Args:  cobra.NoArgs,
	RunE:  runAdminChats,
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminLoginCmd, adminLogoutCmd, adminAnalyticsCmd, adminChatsCmd)

	adminLoginCmd.Flags().String("email", "", "admin email")
	adminLoginCmd.Flags().String("password", "", "admin password")
	_ = adminLoginCmd.MarkFlagRequired("email")

	adminChatsCmd.Flags().String("session", "", "show the turns of one session")
}

func runAdminAnalytics(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireLogin(ctx, gateway.RealmAdmin); err != nil {
		return err
	}
	a, err := rt.Admin.Analytics(ctx)
	if err != nil {
		return describeFor(gateway.RealmAdmin, err)
	}

	p := newPrinter(cmd)
	p.Header("Analytics")
	summary := output.NewTable(p.Out(), []string{"METRIC", "VALUE"})
	summary.AddRow("orders (30 days)", strconv.Itoa(a.OrdersLast30Days))
	summary.AddRow("orders (1 year)", strconv.Itoa(a.OrdersLastYear))
	summary.AddRow("revenue (30 days)", a.RevenueLast30Days.StringFixed(2))
	summary.AddRow("returns", fmt.Sprintf("%d (%.1f%%)", a.TotalReturns, a.ReturnRatePercent))
	summary.AddRow("exchanges", fmt.Sprintf("%d (%.1f%%)", a.TotalExchanges, a.ExchangeRatePercent))
	if err := summary.Render(); err != nil {
		return err
	}

	if len(a.TopReturnedProducts) > 0 {
		p.Header("Most returned")
		t := output.NewTable(p.Out(), []string{"PRODUCT", "RETURNS"})
		for _, pc := range a.TopReturnedProducts {
			t.AddRow(pc.ProductName, strconv.Itoa(pc.Count))
		}
		if err := t.Render(); err != nil {
			return err
		}
	}
	if len(a.TopReturnReasons) > 0 {
		p.Header("Return reasons")
		t := output.NewTable(p.Out(), []string{"REASON", "COUNT"})
		for _, rc := range a.TopReturnReasons {
			t.AddRow(rc.ReturnReason, strconv.Itoa(rc.Count))
		}
		if err := t.Render(); err != nil {
			return err
		}
	}
	return nil
}

func runAdminChats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireLogin(ctx, gateway.RealmAdmin); err != nil {
		return err
	}
	p := newPrinter(cmd)

	if id, _ := cmd.Flags().GetString("session"); id != "" {
		sessions, err := rt.Admin.ChatSession(ctx, id)
		if err != nil {
			return describeFor(gateway.RealmAdmin, err)
		}
		if len(sessions) == 0 {
			p.Warning("No session %s", id)
			return nil
		}
		p.Header("Session " + id)
		t := output.NewTable(p.Out(), []string{"#", "STEP", "USER", "BOT"})
		for _, turn := range sessions[0].Messages {
			t.AddRow(strconv.Itoa(turn.TurnNumber), turn.Step, turn.UserText, turn.BotText)
		}
		return t.Render()
	}

	sessions, err := rt.Admin.Chats(ctx)
	if err != nil {
		return describeFor(gateway.RealmAdmin, err)
	}
	if len(sessions) == 0 {
		p.Info("No chat sessions yet")
		return nil
	}
	p.Header("Chat sessions")
	t := output.NewTable(p.Out(), []string{"SESSION", "STATUS", "TYPE", "MESSAGES", "LAST MESSAGE"})
	for _, s := range sessions {
		t.AddRow(s.SessionID, s.Status, s.RequestType, strconv.Itoa(s.MessageCount), s.LastMessagePreview)
	}
	return t.Render()
}
