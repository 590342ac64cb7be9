package cmd

import (
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/vibe-audio/vibe/auth"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the token sent to private catalogs",
}

func init() {
	authCmd.AddCommand(authSetCmd)
}

// authSetCmd stores the catalog bearer token in the system keyring.
var authSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the catalog token in the system keyring",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else if env := os.Getenv("VIBE_CATALOG_TOKEN"); env != "" {
			token = env
		} else {
			prompt := survey.Password{Message: "Catalog token:"}
			handleErr(survey.AskOne(&prompt, &token))
		}

		if token == "" {
			handleErr(errors.New("token is empty"))
		}

		handleErr(auth.SetToken(token))
		success("token stored")
	},
}

func init() {
	authCmd.AddCommand(authClearCmd)
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the catalog token from the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		success("token removed")
	},
}
