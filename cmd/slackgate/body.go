package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/slackgate/internal/signature"
)

const envSigningSecret = "SLACK_SIGNING_SECRET"

// readBody reads the payload from the named file, or stdin when the argument
// is absent or "-".
func readBody(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return b, nil
}

type signFlags struct {
	secret    string
	timestamp int64
}

func (f *signFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.secret, "secret", os.Getenv(envSigningSecret), "signing secret (defaults to $"+envSigningSecret+")")
	cmd.Flags().Int64Var(&f.timestamp, "timestamp", 0, "unix timestamp to sign with (defaults to now)")
}

// headers returns the timestamp and signature header values for body.
func (f *signFlags) headers(body []byte) (string, string, error) {
	if f.secret == "" {
		return "", "", signature.ErrNoSecret
	}
	ts := f.timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}
	return strconv.FormatInt(ts, 10), signature.Sign(f.secret, signature.Version, ts, body), nil
}
