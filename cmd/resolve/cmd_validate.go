package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resolution-backend/internal/assembly"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate TEMPLATE VALUES",
		Short: "Check answers against a template's validation rules",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, store, err := loadInputs(args[0], args[1])
			if err != nil {
				return err
			}
			msgs := assembly.New(nil, nil).Validate(tpl, store)
			if len(msgs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			printMessages(cmd, msgs)
			return &assembly.ValidationError{Messages: msgs}
		},
	}
}

func printMessages(cmd *cobra.Command, msgs []string) {
	for _, m := range msgs {
		fmt.Fprintln(cmd.OutOrStdout(), "-", m)
	}
}
