package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/slackgate/internal/dispatch"
	"github.com/garrettladley/slackgate/internal/signature"
	"github.com/garrettladley/slackgate/internal/xhttp"
)

const defaultSendURL = "http://localhost:8080" + dispatch.DefaultPath

func sendCmd() *cobra.Command {
	var (
		flags  signFlags
		target string
		tenant string
		param  string
	)
	cmd := &cobra.Command{
		Use:   "send [file]",
		Short: "Sign a payload and POST it to a running gateway",
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

			u, err := url.Parse(target)
			if err != nil {
				return fmt.Errorf("invalid url %q: %w", target, err)
			}
			if tenant != "" {
				q := u.Query()
				q.Set(param, tenant)
				u.RawQuery = q.Encode()
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, u.String(), bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("failed to build request: %w", err)
			}
			req.Header.Set(xhttp.ContentType, xhttp.MIMEApplicationJSON)
			req.Header.Set(signature.HeaderTimestamp, ts)
			req.Header.Set(signature.HeaderSignature, sig)

			client := xhttp.NewHTTPClient(xhttp.WithTimeout(10*time.Second), xhttp.WithoutRedirects())

			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("failed to send event: %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, resp.Status)
			if loc := resp.Header.Get(xhttp.Location); loc != "" {
				_, _ = fmt.Fprintf(out, "%s: %s\n", xhttp.Location, loc)
			}
			if _, err := io.Copy(out, resp.Body); err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&target, "url", defaultSendURL, "gateway callback URL")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant whose secret signed the payload")
	cmd.Flags().StringVar(&param, "tenant-param", "app", "query parameter carrying the tenant")
	return cmd
}
