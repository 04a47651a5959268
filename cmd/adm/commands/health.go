package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	contextutils "triviaapi/internal/utils"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// healthResponse is the body of GET /health
type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

// HealthCommand returns the health command, which queries a running server
func HealthCommand(rt *Runtime) *cobra.Command {
	var url string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running server",
		Long:  `Call GET /health on a running trivia API and report its status. Fails unless the server is healthy.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				url = "http://localhost:" + rt.Config.Server.Port
			}
			client := &http.Client{
				Transport: otelhttp.NewTransport(http.DefaultTransport),
				Timeout:   timeout,
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimRight(url, "/")+"/health", nil)
			if err != nil {
				return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid server url %q: %w", url, err)
			}

			resp, err := client.Do(req)
			if err != nil {
				return contextutils.WrapErrorf(contextutils.ErrServiceUnavailable, "health request failed: %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return contextutils.WrapError(err, "failed to read health response")
			}

			var health healthResponse
			if err := json.Unmarshal(body, &health); err != nil {
				return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unexpected health response: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: status=%s database=%s (HTTP %d)\n",
				health.Service, health.Status, health.Database, resp.StatusCode)
			if resp.StatusCode != http.StatusOK {
				return contextutils.WrapErrorf(contextutils.ErrServiceUnavailable, "server reported HTTP %d", resp.StatusCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Base URL of the server (default http://localhost:<server.port>)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	return cmd
}
