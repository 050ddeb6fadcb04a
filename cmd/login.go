package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/spf13/cobra"
)

const passwordEnv = "SGA_PASSWORD"

var errMissingPassword = errors.New("password is required: use --password-stdin or set " + passwordEnv)

func newLoginCmd(app *app) *cobra.Command {
	var username string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin(), passwordStdin)
			if err != nil {
				return err
			}

			user, err := app.school.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			app.logger.Debug().Str("user_id", string(user.ID)).Msg("session stored")

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s%s\n", loginName(user, username), roleSuffix(user.Role))
			return err
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username or email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.school.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return err
		},
	}
}

func readPassword(in io.Reader, fromStdin bool) (string, error) {
	if !fromStdin {
		if password := os.Getenv(passwordEnv); password != "" {
			return password, nil
		}
		return "", errMissingPassword
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errMissingPassword
	}
	return password, nil
}

func loginName(user domain.User, fallback string) string {
	if user.Username != "" {
		return user.Username
	}
	if user.Email != "" {
		return user.Email
	}
	return fallback
}

func roleSuffix(role domain.Role) string {
	if role == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", role)
}
