package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garrettladley/slackgate/internal/signature"
)

func signCmd() *cobra.Command {
	var flags signFlags
	cmd := &cobra.Command{
		Use:   "sign [file]",
		Short: "Print Slack signature headers for a payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd, args)
			if err != nil {
				return err
			}
			ts, sig, err := flags.headers(body)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s: %s\n", signature.HeaderTimestamp, ts)
			_, _ = fmt.Fprintf(out, "%s: %s\n", signature.HeaderSignature, sig)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
