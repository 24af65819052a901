package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UkralStul/minifeed/internal/view"
)

var registerCmd = &cobra.Command{
	Use:   "register <username> <password>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := current.Accounts.Register(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		view.Success(cmd.OutOrStdout(), "Registered and logged in as %s", user.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Log in to an existing account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := current.Accounts.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		view.Success(cmd.OutOrStdout(), "Logged in as %s", user.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.Accounts.Logout(cmd.Context()); err != nil {
			return err
		}
		view.Success(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := current.Accounts.Restore(cmd.Context())
		if err != nil {
			return err
		}
		if !sess.Authenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		user, err := current.Accounts.Profile(cmd.Context(), sess.Username)
		if err != nil {
			return err
		}
		view.RenderProfile(cmd.OutOrStdout(), user)
		return nil
	},
}

var (
	profileDisplayName string
	profileBio         string
)

var profileCmd = &cobra.Command{
	Use:   "profile [username]",
	Short: "Show a profile, or update yours with --name and --bio",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("name") || cmd.Flags().Changed("bio") {
			sess, err := requireSession(ctx)
			if err != nil {
				return err
			}
			user, err := current.Accounts.Profile(ctx, sess.Username)
			if err != nil {
				return err
			}
			name, bio := user.DisplayName, user.Bio
			if cmd.Flags().Changed("name") {
				name = profileDisplayName
			}
			if cmd.Flags().Changed("bio") {
				bio = profileBio
			}
			user, err = current.Accounts.SaveProfile(ctx, sess, name, bio)
			if err != nil {
				return err
			}
			view.RenderProfile(cmd.OutOrStdout(), user)
			return nil
		}

		var username string
		if len(args) == 1 {
			username = args[0]
		} else {
			sess, err := requireSession(ctx)
			if err != nil {
				return err
			}
			username = sess.Username
		}
		user, err := current.Accounts.Profile(ctx, username)
		if err != nil {
			return err
		}
		view.RenderProfile(cmd.OutOrStdout(), user)
		return nil
	},
}

func init() {
	profileCmd.Flags().StringVar(&profileDisplayName, "name", "", "New display name")
	profileCmd.Flags().StringVar(&profileBio, "bio", "", "New bio")

	RootCmd.AddCommand(registerCmd)
	RootCmd.AddCommand(loginCmd)
	RootCmd.AddCommand(logoutCmd)
	RootCmd.AddCommand(whoamiCmd)
	RootCmd.AddCommand(profileCmd)
}
