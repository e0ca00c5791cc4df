package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oarkflow/mebel/internal/auth"
)

// EnvPassword supplies the login password when --password is omitted.
const EnvPassword = "MEBEL_PASSWORD"

var (
	loginEmail    string
	loginPassword string
	whoamiRefresh bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in with email and password.

The token and profile are kept in the session file so later commands
run as the signed-in user. The password can also be given in the
MEBEL_PASSWORD environment variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv(EnvPassword)
		}
		if loginEmail == "" || password == "" {
			return fmt.Errorf("email and password are required")
		}

		c, err := openConsole()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		login, err := outcome(out, c.Auth.Login(cmd.Context(), loginEmail, password))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Signed in as %s (%s), start at %s\n", login.Profile.Name, login.Profile.Role, login.Landing)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}
		if err := c.Auth.Logout(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the profile stored in the session and the token claims.

With --refresh the profile is fetched again from the backend and the
stored copy is updated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}

		profile, ok := c.Session.Profile()
		if whoamiRefresh {
			res := c.Auth.Me(cmd.Context())
			if !res.OK() {
				return fmt.Errorf("%s: %s", auth.MsgProfileFailed, res.Err())
			}
			profile, ok = res.Data(), true
		}
		if !ok {
			return fmt.Errorf("not signed in, run mebel login")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\n", profile.Name, profile.Email)
		fmt.Fprintf(out, "  ID:     %d\n", profile.ID)
		fmt.Fprintf(out, "  Role:   %s\n", profile.Role)
		fmt.Fprintf(out, "  Status: %s\n", profile.Status)

		if claims, err := c.Session.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
			state := "valid"
			if claims.Expired(time.Now()) {
				state = "expired"
			}
			fmt.Fprintf(out, "  Token:  %s until %s\n", state, claims.ExpiresAt.Local().Format(time.DateTime))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (default $MEBEL_PASSWORD)")
	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "reload the profile from the backend")
}
