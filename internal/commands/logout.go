package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *appContext) error {
			session, err := app.auth.CurrentSession(cmd.Context())
			if err != nil {
				return err
			}
			if session == nil {
				fmt.Println("Not signed in.")
				return nil
			}
			if err := app.auth.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Signed out %s.\n", session.User.Email)
			return nil
		})
	},
}
