package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the keyring snapshot as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, _, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = m.Close()
		}()

		data, err := m.Export(ctx)
		if err != nil {
			return err
		}

		if exportOut == "" || exportOut == "-" {
			_, err = fmt.Println(string(data))
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o600); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		fmt.Printf("Exported to %s\n", exportOut)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace all accounts with the contents of a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}

		ctx := cmd.Context()
		m, _, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = m.Close()
		}()

		if err := m.Import(ctx, data); err != nil {
			return err
		}

		accounts, err := m.Accounts(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d accounts\n", len(accounts))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(exportCmd, importCmd)
}
