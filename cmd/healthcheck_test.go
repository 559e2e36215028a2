package cmd

import (
	"net/http"
	"strings"
	"testing"

	"github.com/iksnae/merchant-support/testutil"
)

func TestHealthcheckCommand(t *testing.T) {
	tests := []struct {
		name      string
		analytics string
		args      []string
		want      []string
		notWant   []string
	}{
		{
			name:      "everything available",
			analytics: testutil.AnalyticsJSON,
			args:      []string{"--shop", "my-store.myshopify.com"},
			want: []string{
				"Configuration is valid",
				"Assistant service answered",
				"Analytics dashboard available",
				"Connected store: my-store.myshopify.com",
				"Health check passed!",
			},
			notWant: []string{"Questions recorded"},
		},
		{
			name:      "analytics failing",
			analytics: testutil.AnalyticsFailureJSON,
			want: []string{
				"Analytics dashboard unavailable:",
				"analytics store unavailable",
				"No store connected",
				"Chat works but analytics is unavailable",
			},
		},
		{
			name:      "details",
			analytics: testutil.AnalyticsJSON,
			args:      []string{"--details"},
			want: []string{
				"Timeout: 1m0s",
				"Questions recorded: 128",
				"merchant-support connect <shop>",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewMockServer(t)
			server.Handle(http.MethodGet, "/history", http.StatusOK, testutil.ConversationsJSON)
			server.Handle(http.MethodGet, "/analytics/dashboard", http.StatusOK, tt.analytics)

			args := append([]string{"healthcheck", "--api-url", server.URL}, tt.args...)
			output, err := runCommand(t, args...)
			if err != nil {
				t.Fatalf("healthcheck error = %v\n%s", err, output)
			}
			assertContains(t, output, tt.want...)
			for _, nw := range tt.notWant {
				if strings.Contains(output, nw) {
					t.Errorf("output should not contain %q:\n%s", nw, output)
				}
			}
		})
	}
}

func TestHealthcheckCommand_Unreachable(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.Handle(http.MethodGet, "/history", http.StatusServiceUnavailable, `{"error": "maintenance"}`)

	output, err := runCommand(t, "healthcheck", "--api-url", server.URL)
	if err == nil || !strings.Contains(err.Error(), "health check failed") {
		t.Fatalf("healthcheck error = %v, want a health check failure", err)
	}
	assertContains(t, output, "Assistant service is not reachable", "maintenance", "Check --api-url")
	if len(server.RequestsTo(http.MethodGet, "/analytics/dashboard")) != 0 {
		t.Error("analytics should not be checked when the service is down")
	}
}
