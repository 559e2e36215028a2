package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iksnae/merchant-support/internal"
)

var (
	connectReturn string
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect [shop]",
	Short: "Connect a store to the assistant",
	Long: `Print the link that connects a Shopify store to the assistant.

After authorizing in the browser you are sent back to an address containing
shopify_connected=true. Pass that address with --return to read the
connected store:

  merchant-support connect my-store.myshopify.com
  merchant-support connect --return 'http://localhost:3000/?shopify_connected=true&shop=my-store.myshopify.com'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if connectReturn != "" {
			connected, cleaned, ok, err := internal.ConsumeConnectReturn(connectReturn)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("the address does not report a connected store")
			}
			internal.LogDebug("Connect return consumed, cleaned address %s", cleaned)
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Connected "+connected))
			_, _ = fmt.Fprintf(out, "Use it with --shop %s, MERCHANT_SUPPORT_SHOP or `shop:` in the config file.\n", connected)
			return nil
		}

		if len(args) == 0 {
			return errors.New("give a shop domain, or --return with the address you were redirected to")
		}
		_, _ = fmt.Fprintln(out, infoStyle.Render("Open this link to connect "+args[0]+":"))
		_, _ = fmt.Fprintln(out, newClient().AuthURL(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().StringVar(&connectReturn, "return", "", "Address the store authorization redirected back to")
}
