package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
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
			fmt.Printf("%s <%s>\n", session.User.DisplayName, session.User.Email)
			return nil
		})
	},
}
