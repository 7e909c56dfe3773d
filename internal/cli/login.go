package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
}

func readPassword() (string, error) {
	if password := os.Getenv("ORUMA_PASSWORD"); password != "" {
		return password, nil
	}
	fmt.Fprint(os.Stderr, "password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Authenticate and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		password, err := readPassword()
		if err != nil {
			return err
		}

		user, err := a.session.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", user.Name, user.ID)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register [name] [email] [university]",
	Short: "Create an account and start a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		password, err := readPassword()
		if err != nil {
			return err
		}

		user, err := a.session.Register(cmd.Context(), args[0], args[1], password, args[2])
		if err != nil {
			return err
		}
		fmt.Printf("registered as %s (%s)\n", user.Name, user.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear stored tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(cmd.Context()); err != nil {
			return err
		}
		a.session.Logout(cmd.Context())
		fmt.Println("logged out")
		return nil
	},
}
