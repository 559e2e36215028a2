package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/merchant-support/internal"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the assistant service can be reached",
	Long: `Check the health of the client setup by verifying:
  • The configuration is valid
  • The assistant service answers
  • The analytics dashboard is available
  • A store is connected

This command is useful for debugging connection issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		line := func(a ...any) { _, _ = fmt.Fprintln(out, a...) }
		detail := func(format string, a ...any) {
			if healthcheckVerbose {
				_, _ = fmt.Fprintf(out, "   "+format+"\n", a...)
			}
		}

		line(sectionStyle.Render("🔍 Merchant Support Health Check"))
		line()

		// Step 1: Configuration
		line(infoStyle.Render("Step 1: Checking configuration..."))
		line(successStyle.Render("✅ Configuration is valid"))
		detail("Service: %s", cfg.APIURL)
		detail("Timeout: %s", cfg.Timeout)
		detail("Log level: %s", cfg.LogLevel)
		line()

		client := newClient()
		ctx := cmd.Context()

		// Step 2: Conversation service
		line(infoStyle.Render("Step 2: Contacting the assistant service..."))
		latency, err := client.Ping(ctx)
		if err != nil {
			line(errorStyle.Render("❌ Assistant service is not reachable:"), err)
			line()
			printHealthSummary(out, false, false)
			return fmt.Errorf("health check failed: %w", err)
		}
		line(successStyle.Render(fmt.Sprintf("✅ Assistant service answered in %s", latency.Round(time.Millisecond))))
		line()

		// Step 3: Analytics
		line(infoStyle.Render("Step 3: Checking the analytics dashboard..."))
		analyticsOK := true
		snapshot, err := client.Dashboard(ctx, internal.AnalyticsFilters{})
		if err != nil {
			analyticsOK = false
			line(warningStyle.Render("⚠️  Analytics dashboard unavailable:"), err)
		} else {
			line(successStyle.Render("✅ Analytics dashboard available"))
			detail("Questions recorded: %d", snapshot.TotalQuestions)
		}
		line()

		// Step 4: Store connection
		line(infoStyle.Render("Step 4: Checking store connection..."))
		if cfg.Shop != "" {
			line(successStyle.Render("✅ Connected store: " + cfg.Shop))
		} else {
			line(warningStyle.Render("⚠️  No store connected"))
			detail("Run `merchant-support connect <shop>` to link one")
		}
		line()

		printHealthSummary(out, true, analyticsOK)
		return nil
	},
}

func printHealthSummary(out io.Writer, serviceOK, analyticsOK bool) {
	_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
	_, _ = fmt.Fprintln(out)
	switch {
	case serviceOK && analyticsOK:
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
	case serviceOK:
		_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Chat works but analytics is unavailable"))
	default:
		_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
		_, _ = fmt.Fprintln(out, "   • Check --api-url or MERCHANT_SUPPORT_API_URL")
		_, _ = fmt.Fprintln(out, "   • Make sure the service is running")
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed diagnostic information")
}
