package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iksnae/merchant-support/internal"
	"github.com/iksnae/merchant-support/internal/ui"
)

var (
	analyticsFrom        string
	analyticsTo          string
	analyticsSegment     string
	analyticsIntent      string
	analyticsFormat      string
	analyticsInteractive bool
)

// analyticsCmd represents the analytics command
var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show the support analytics dashboard",
	Long: `Show question volume, confidence, intents, merchant segments and source
usefulness, optionally filtered by date range, merchant segment and intent.

With --interactive, filters can be changed one at a time:
  from 2024-01-01    to 2024-01-31    segment plus    intent billing
  clear              refresh          show            quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := analyticsFiltersFromFlags()
		if err != nil {
			return err
		}

		client := newClient()
		out := cmd.OutOrStdout()

		if analyticsInteractive {
			return runAnalyticsShell(cmd.Context(), client, filters, cmd.InOrStdin(), out)
		}

		analytics := internal.NewAnalyticsClient(client)
		defer analytics.Close()
		for key, value := range filterPairs(filters) {
			if err := analytics.SetFilter(key, value); err != nil {
				return err
			}
		}
		err = internal.ShowProgress(cmd.Context(), "Loading analytics", analytics.Refresh)
		if err != nil {
			return fmt.Errorf("failed to load analytics: %w", err)
		}
		return writeAnalytics(out, analytics.View(), analyticsFormat)
	},
}

func analyticsFiltersFromFlags() (internal.AnalyticsFilters, error) {
	f := internal.AnalyticsFilters{
		DateFrom:        analyticsFrom,
		DateTo:          analyticsTo,
		MerchantSegment: analyticsSegment,
		Intent:          analyticsIntent,
	}
	for key, value := range filterPairs(f) {
		if err := validateFilter(key, value); err != nil {
			return f, err
		}
	}
	return f, nil
}

// filterPairs lists the non-empty filters by query key
func filterPairs(f internal.AnalyticsFilters) map[string]string {
	pairs := map[string]string{}
	for key, values := range f.Query() {
		pairs[key] = values[0]
	}
	return pairs
}

func validateFilter(key, value string) error {
	if value == "" {
		return nil
	}
	switch key {
	case internal.FilterDateFrom, internal.FilterDateTo:
		if _, err := time.Parse(time.DateOnly, value); err != nil {
			return fmt.Errorf("%s must be a date like 2024-01-31: %w", key, err)
		}
	case internal.FilterMerchantSegment:
		if !slices.Contains(internal.MerchantSegments, value) {
			return fmt.Errorf("unknown merchant segment %q (choose %s)", value, strings.Join(internal.MerchantSegments, ", "))
		}
	case internal.FilterIntent:
		if !slices.Contains(internal.Intents, value) {
			return fmt.Errorf("unknown intent %q (choose %s)", value, strings.Join(internal.Intents, ", "))
		}
	}
	return nil
}

func writeAnalytics(out io.Writer, view internal.AnalyticsView, format string) error {
	switch format {
	case "", "text":
		_, err := fmt.Fprint(out, ui.RenderAnalytics(view, cfg.WordWrap))
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view.Snapshot)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer func() { _ = enc.Close() }()
		return enc.Encode(view.Snapshot)
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", format)
	}
}

var shellKeys = map[string]string{
	"from":    internal.FilterDateFrom,
	"to":      internal.FilterDateTo,
	"segment": internal.FilterMerchantSegment,
	"intent":  internal.FilterIntent,
}

// runAnalyticsShell reads filter changes line by line. Each change is
// applied after the debounce delay, so quick successive edits cause one
// fetch.
func runAnalyticsShell(ctx context.Context, source internal.AnalyticsSource, filters internal.AnalyticsFilters, in io.Reader, out io.Writer) error {
	var outMu sync.Mutex
	write := func(s string) {
		outMu.Lock()
		defer outMu.Unlock()
		_, _ = fmt.Fprint(out, s)
	}

	analytics := internal.NewAnalyticsClient(source,
		internal.WithBaseContext(ctx),
		internal.WithUpdateHook(func(view internal.AnalyticsView) {
			write("\n" + ui.RenderAnalytics(view, cfg.WordWrap) + "analytics> ")
		}),
	)
	defer analytics.Close()

	for key, value := range filterPairs(filters) {
		if err := analytics.SetFilter(key, value); err != nil {
			return err
		}
	}
	if err := analytics.Refresh(ctx); err != nil {
		internal.LogDebug("Initial analytics load failed: %v", err)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		word, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch word {
		case "":
			write("analytics> ")
		case "quit", "exit":
			return nil
		case "show":
			write(ui.RenderAnalytics(analytics.View(), cfg.WordWrap) + "analytics> ")
		case "refresh":
			_ = analytics.Refresh(ctx)
		case "clear":
			_ = analytics.ClearFilters(ctx)
		default:
			key, ok := shellKeys[word]
			if !ok {
				write(fmt.Sprintf("unknown command %q (from, to, segment, intent, clear, refresh, show, quit)\nanalytics> ", word))
				continue
			}
			if err := validateFilter(key, arg); err != nil {
				write(err.Error() + "\nanalytics> ")
				continue
			}
			if err := analytics.SetFilter(key, arg); err != nil {
				write(err.Error() + "\nanalytics> ")
				continue
			}
			analytics.ApplyFilters()
		}
	}
	return scanner.Err()
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
	analyticsCmd.Flags().StringVar(&analyticsFrom, "from", "", "Start date (YYYY-MM-DD)")
	analyticsCmd.Flags().StringVar(&analyticsTo, "to", "", "End date (YYYY-MM-DD)")
	analyticsCmd.Flags().StringVar(&analyticsSegment, "segment", "", "Merchant segment: "+strings.Join(internal.MerchantSegments, ", "))
	analyticsCmd.Flags().StringVar(&analyticsIntent, "intent", "", "Intent: "+strings.Join(internal.Intents, ", "))
	analyticsCmd.Flags().StringVarP(&analyticsFormat, "format", "f", "text", "Output format (text, json, yaml)")
	analyticsCmd.Flags().BoolVarP(&analyticsInteractive, "interactive", "i", false, "Change filters interactively")
}
