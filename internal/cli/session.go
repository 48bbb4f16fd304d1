package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intelliquiz/iqclient/api"
	"github.com/intelliquiz/iqclient/auth"
	"github.com/intelliquiz/iqclient/internal/app"
)

func newLoginCmd(s *state) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			if username == "" {
				return errors.New("--username is required")
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}
			if password == "" {
				return errors.New("password cannot be empty")
			}

			out, err := rt.API.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			home, _ := auth.HomeFor(out.Roles)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s %v\n", out.Username, out.Roles)
			if home != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Dashboard: %s\n", home)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted if omitted)")
	return cmd
}

func newRegisterCmd(s *state) *cobra.Command {
	var req api.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			if req.Username == "" || req.Email == "" || req.Password == "" {
				return errors.New("--username, --email and --password are required")
			}
			msg, err := rt.API.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg.Message)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "account username")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "account password")
	cmd.Flags().StringSliceVar(&req.Role, "role", nil, "roles to request: student, teacher, admin")
	return cmd
}

func newLogoutCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the stored session",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			if err := rt.API.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newStatusCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			session := rt.Store.Current()
			out := cmd.OutOrStdout()
			if !session.IsAuthenticated {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			fmt.Fprintf(out, "User:     %s (id %s)\n", session.Username, session.UserID)
			fmt.Fprintf(out, "Roles:    %s\n", strings.Join(session.Roles, ", "))
			claims, err := auth.Decode(session.Token)
			switch {
			case err != nil:
				fmt.Fprintln(out, "Token:    unreadable")
			case auth.IsValid(session.Token, rt.Config.Session.Grace):
				fmt.Fprintf(out, "Token:    valid until %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			default:
				fmt.Fprintf(out, "Token:    expired at %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		}),
	}
}
