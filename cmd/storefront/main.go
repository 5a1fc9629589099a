// Command storefront drives the storefront API the way product pages do:
// it records product views in a local store, fills the recently viewed
// panel and toggles wishlist entries.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL   string
	userID    string
	statePath string
	pagePath  string
	logLevel  string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront page client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", envOr("STOREFRONT_URL", "http://localhost:8080"), "storefront API base URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("STOREFRONT_USER"), "user id sent in X-User-ID")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", envOr("STOREFRONT_STATE", "storefront-visitor.db"), "visitor local storage file")
	rootCmd.PersistentFlags().StringVar(&pagePath, "page", os.Getenv("STOREFRONT_PAGE"), "saved storefront page whose csrf-token meta tag backs the cookie")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	rootCmd.AddCommand(viewCmd, wishlistCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
