package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// slowResponse is the readiness latency reported as a warning
const slowResponse = time.Second

type readiness struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	QueueDepth *int   `json:"queue_depth,omitempty"`
}

func healthCmd() *cobra.Command {
	var baseURL string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the readiness of a running service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return checkHealth(ctx, cmd, baseURL)
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "Service base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
	return cmd
}

func checkHealth(ctx context.Context, cmd *cobra.Command, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/readyz", nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	var body readiness
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("health check failed: unreadable response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s (status %d)", body.Message, resp.StatusCode)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Service ready (response time: %v)\n", elapsed.Round(time.Millisecond))
	if body.QueueDepth != nil {
		fmt.Fprintf(out, "Queued events: %d\n", *body.QueueDepth)
	}
	if elapsed > slowResponse {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: slow response time (%v)\n", elapsed)
	}
	return nil
}
