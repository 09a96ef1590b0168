package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"resolution-backend/internal/sequence"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "List the last sequence number issued per entity and year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := sequence.NewFileStore(opts.registerPath).Load(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ENTITY\tYEAR\tLAST")
			for _, e := range reg.Entries() {
				fmt.Fprintf(w, "%s\t%d\t%02d\n", e.EntityID, e.Year, e.Counter)
			}
			return w.Flush()
		},
	}
}
