package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/garrettladley/slackgate/internal/signature"
)

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("Execute() error = %v (output %q)", err, out.String())
	}
	return out.String()
}

func TestSignCmd(t *testing.T) {
	t.Parallel()

	body := `{"type":"url_verification","challenge":"c"}`
	got := run(t, signCmd(), body, "--secret", "s3cret", "--timestamp", "1700000000")

	want := signature.HeaderTimestamp + ": 1700000000\n" +
		signature.HeaderSignature + ": " + signature.Sign("s3cret", signature.Version, 1700000000, []byte(body)) + "\n"
	if got != want {
		t.Errorf("sign output = %q, want %q", got, want)
	}
}

func TestSignCmdRequiresSecret(t *testing.T) {
	t.Parallel()

	cmd := signCmd()
	cmd.SetIn(strings.NewReader("{}"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--secret", ""})
	if err := cmd.ExecuteContext(t.Context()); err == nil {
		t.Error("Execute() error = nil, want missing secret error")
	}
}

func TestScanCmd(t *testing.T) {
	t.Parallel()

	got := run(t, scanCmd(), `{"type":"event_callback","event":{"type":"app_mention"}}`)
	for _, want := range []string{`"dispatch_type": "event_callback"`, `"event_type": "app_mention"`} {
		if !strings.Contains(got, want) {
			t.Errorf("scan output missing %s: %q", want, got)
		}
	}
}
