package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the back office",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			username, err := promptText(a.reader, "Username", a.out)
			if err != nil {
				return err
			}
			password, err := promptPassword(a.out)
			if err != nil {
				return err
			}

			token, err := a.client.Login(ctx, username, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := a.session.SetToken(ctx, token); err != nil {
				return fmt.Errorf("store session: %w", err)
			}

			fmt.Fprintln(a.out, "Logged in.")
			a.log.Info(ctx, "login succeeded", "user", username)
			return nil
		},
	}
}
