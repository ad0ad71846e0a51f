package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/keyring/address"
)

var addName string

var addCmd = &cobra.Command{
	Use:   "add [address]",
	Short: "Add a watch-only account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, _, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = m.Close()
		}()

		account, err := m.AddAccount(ctx, addName, args[0])
		if err != nil {
			return userError(err)
		}
		fmt.Printf("Added %q (%s)\n", account.Label(), address.Checksum(account.Address))
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove [id]",
	Aliases: []string{"rm"},
	Short:   "Remove a watch-only account",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, _, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = m.Close()
		}()

		if err := m.RemoveAccount(ctx, args[0]); err != nil {
			return userError(err)
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Change the label of a watch-only account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, _, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = m.Close()
		}()

		if err := m.RenameAccount(ctx, args[0], args[1]); err != nil {
			return userError(err)
		}
		fmt.Printf("Renamed %s to %q\n", args[0], args[1])
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [address]",
	Short: "Check whether an address can be added",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, _, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = m.Close()
		}()

		res, err := m.Validate(ctx, args[0])
		if err != nil {
			return err
		}
		if !res.IsValid {
			return errors.New(res.Reason)
		}
		fmt.Printf("%s is valid\n", address.Checksum(args[0]))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "account label (default \"Watch Only N\")")

	rootCmd.AddCommand(addCmd, removeCmd, renameCmd, validateCmd)
}

// userError replaces err with the message shown next to a form field.
func userError(err error) error {
	return errors.New(domain.UserMessage(err))
}
