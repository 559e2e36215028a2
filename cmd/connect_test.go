package cmd

import (
	"strings"
	"testing"
)

func TestConnectCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr string
	}{
		{
			name: "auth link",
			args: []string{"connect", "my-store.myshopify.com", "--api-url", "https://support.example.com/api"},
			want: []string{
				"Open this link to connect my-store.myshopify.com:",
				"https://support.example.com/api/shopify/auth?shop=my-store.myshopify.com",
			},
		},
		{
			name: "return address",
			args: []string{"connect", "--return", "http://localhost:3000/?shopify_connected=true&shop=my-store.myshopify.com"},
			want: []string{"Connected my-store.myshopify.com", "--shop my-store.myshopify.com"},
		},
		{
			name:    "return address without connection",
			args:    []string{"connect", "--return", "http://localhost:3000/?tab=chat"},
			wantErr: "does not report a connected store",
		},
		{
			name:    "no shop",
			args:    []string{"connect"},
			wantErr: "give a shop domain",
		},
		{
			name:    "too many arguments",
			args:    []string{"connect", "a.myshopify.com", "b.myshopify.com"},
			wantErr: "accepts at most 1 arg(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runCommand(t, tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("connect error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("connect error = %v", err)
			}
			assertContains(t, output, tt.want...)
		})
	}
}
