package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	dryRun  bool
	limit   int
	bucket  string
	verbose bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Ask the server to log this request at debug level")

	tickCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate subscriptions without sending messages")
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Number of deliveries to show")
	matchesCmd.Flags().StringVar(&bucket, "bucket", "live", "One of live, scheduled, finished")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(subscriptionsCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(matchesCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "List active match subscriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/subscriptions", nil)
	},
}

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one notification pass now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tick", url.Values{"dry_run": {strconv.FormatBool(dryRun)}})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent notification deliveries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/history", url.Values{"limit": {strconv.Itoa(limit)}})
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Render the current match listing for a bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches", url.Values{"bucket": {bucket}})
	},
}

func performRequest(method, endpoint string, query url.Values) error {
	if query == nil {
		query = url.Values{}
	}
	if verbose {
		query.Set("verbose", "true")
	}
	target := host + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	fmt.Printf("Making request to %s\n", target)

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
