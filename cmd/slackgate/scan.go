package main

import (
	"fmt"

	go_json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/garrettladley/slackgate/internal/eventtype"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [file]",
		Short: "Print the routing discriminators of a payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd, args)
			if err != nil {
				return err
			}
			types, err := eventtype.Scan(body)
			if err != nil {
				return err
			}
			b, err := go_json.MarshalIndent(types, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode discriminators: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}
