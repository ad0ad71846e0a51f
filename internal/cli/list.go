package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/keyring/address"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all watch-only accounts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	m, _, err := openManager(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = m.Close()
	}()

	accounts, err := m.Accounts(ctx)
	if err != nil {
		return err
	}
	printAccounts(os.Stdout, accounts)
	return nil
}

func printAccounts(out io.Writer, accounts []domain.Account) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "LABEL\tADDRESS\tCHAINS")

	for _, a := range accounts {
		chains := make([]string, 0, len(a.Scopes))
		for _, s := range a.Scopes {
			if name, ok := domain.ScopeToName[s]; ok {
				chains = append(chains, name)
				continue
			}
			chains = append(chains, string(s))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", a.Label(), address.Checksum(a.Address), strings.Join(chains, ","))
	}
	_ = w.Flush()
}
