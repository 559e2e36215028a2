package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/iksnae/merchant-support/internal"
	"github.com/iksnae/merchant-support/internal/api"
)

var (
	verbose    bool
	configPath string
	apiURL     string
	shop       string
	timeout    time.Duration
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// cfg is loaded before every command runs
	cfg = internal.DefaultConfig()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "merchant-support",
	Short: "Chat with the merchant support assistant from your terminal",
	Long: `A terminal client for the merchant support assistant.

Ask questions about your store and the Shopify APIs, answer the assistant's
follow-up questions, rate replies, browse past conversations and look at
the support analytics dashboard.

Features:
  • Interactive chat with rendered markdown and copyable code blocks
  • API clarification: pick the API the assistant should answer for
  • Conversation history, export (JSONL, Markdown, YAML, JSON, HTML)
  • Thumbs up/down feedback with optional ratings
  • Analytics dashboard with date, segment and intent filters

Quick Start:
  merchant-support chat                     # Start chatting
  merchant-support list                     # List recent conversations
  merchant-support show <session-id>        # View a conversation
  merchant-support export <id> --format md  # Export a conversation

Configuration is read from ~/.merchant-support/config.yaml and the
MERCHANT_SUPPORT_API_URL and MERCHANT_SUPPORT_SHOP environment variables.
Flags override both.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		return loadConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig layers the config file, environment and flags
func loadConfig(cmd *cobra.Command) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = internal.DefaultConfigPath(); err != nil {
			internal.LogDebug("No default config path: %v", err)
			path = ""
		}
	}

	loaded, err := internal.LoadConfig(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		loaded.APIURL = apiURL
	}
	if flags.Changed("shop") {
		loaded.Shop = shop
	}
	if flags.Changed("timeout") {
		loaded.Timeout = timeout
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !verbose {
		level, _ := internal.ParseLogLevel(loaded.LogLevel)
		internal.SetLogLevel(level)
	}
	cfg = loaded
	internal.LogDebug("Using assistant service at %s", cfg.APIURL)
	return nil
}

// newClient creates a service client from the loaded configuration
func newClient() *api.Client {
	return api.NewClient(cfg.APIURL, cfg.Timeout)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.merchant-support/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", internal.DefaultAPIURL, "Assistant service root URL")
	rootCmd.PersistentFlags().StringVar(&shop, "shop", "", "Connected store domain, e.g. my-store.myshopify.com")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", internal.DefaultTimeout, "Request timeout")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
