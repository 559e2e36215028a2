package internal

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	connectedParam = "shopify_connected"
	shopParam      = "shop"
)

// ConnectURL returns the address that starts linking a store to the assistant
func ConnectURL(baseURL, shop string) string {
	q := url.Values{}
	q.Set(shopParam, strings.TrimSpace(shop))
	return strings.TrimRight(baseURL, "/") + "/shopify/auth?" + q.Encode()
}

// ConsumeConnectReturn reads the store-linking result from the address the
// auth flow redirected back to. It returns the connected shop and the
// address with the result parameters removed, so reading the cleaned
// address again reports nothing.
func ConsumeConnectReturn(rawURL string) (shop string, cleaned string, ok bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL, false, fmt.Errorf("invalid return URL: %w", err)
	}

	q := u.Query()
	if q.Get(connectedParam) != "true" {
		return "", rawURL, false, nil
	}

	shop = q.Get(shopParam)
	q.Del(connectedParam)
	q.Del(shopParam)
	u.RawQuery = q.Encode()

	return shop, u.String(), shop != "", nil
}
