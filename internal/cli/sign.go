package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietddude/watchonly/internal/core/domain"
)

var signParams string

var signCmd = &cobra.Command{
	Use:   "sign [id] [method]",
	Short: "Submit a signing request (always rejected for watch-only accounts)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if signParams != "" && !json.Valid([]byte(signParams)) {
			return errors.New("params must be valid JSON")
		}

		ctx := cmd.Context()
		m, _, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = m.Close()
		}()

		var params json.RawMessage
		if signParams != "" {
			params = json.RawMessage(signParams)
		}
		if err := m.Sign(ctx, args[0], args[1], params); err != nil {
			return fmt.Errorf("%s: %w", domain.UserMessage(err), err)
		}
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signParams, "params", "", "JSON-encoded request params")

	rootCmd.AddCommand(signCmd)
}
