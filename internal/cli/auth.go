package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/output"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your storefront account",
	Long: `Log in and keep the session in local state.

The password is read from standard input when --password is not given.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.Auth.Logout(cmd.Context()); err != nil {
			return err
		}
		newPrinter(cmd).Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(cmd.Context(), gateway.RealmUser); err != nil {
			return err
		}
		user, err := rt.Auth.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		printUser(newPrinter(cmd), user)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().String("name", "", "full name")
	registerCmd.Flags().String("username", "", "username")
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("password", "", "account password")
	registerCmd.Flags().Int("age", 0, "age")
	registerCmd.Flags().String("gender", "", "gender")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, err := passwordFlag(cmd)
	if err != nil {
		return err
	}

	resp, err := rt.Auth.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	p := newPrinter(cmd)
	if resp.User != nil {
		p.Success("Logged in as %s", displayName(resp.User))
	} else {
		p.Success("Logged in")
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := passwordFlag(cmd)
	if err != nil {
		return err
	}
	req := domain.RegisterRequest{Password: password}
	req.FullName, _ = cmd.Flags().GetString("name")
	req.Username, _ = cmd.Flags().GetString("username")
	req.Email, _ = cmd.Flags().GetString("email")
	req.UserGender, _ = cmd.Flags().GetString("gender")
	if age, _ := cmd.Flags().GetInt("age"); age > 0 {
		req.UserAge = &age
	}

	resp, err := rt.Auth.Register(cmd.Context(), req)
	if err != nil {
		return err
	}
	p := newPrinter(cmd)
	p.Success("Account %s created", req.Username)
	if resp.Access == "" {
		p.Info("Run `storefront login` to sign in")
	}
	return nil
}

func passwordFlag(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	return readLine(cmd.InOrStdin())
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func displayName(u *domain.User) string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

func printUser(p *output.Printer, u *domain.User) {
	p.Header("Account")
	table := output.NewTable(p.Out(), []string{"FIELD", "VALUE"})
	table.AddRow("id", strconv.FormatInt(u.ID, 10))
	table.AddRow("name", u.FullName)
	table.AddRow("username", u.Username)
	table.AddRow("email", u.Email)
	if u.UserAge != nil {
		table.AddRow("age", strconv.Itoa(*u.UserAge))
	}
	if u.UserGender != "" {
		table.AddRow("gender", u.UserGender)
	}
	_ = table.Render()
}
