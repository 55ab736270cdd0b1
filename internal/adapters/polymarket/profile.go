package polymarket

// profile.go — resolución de identidades vía Gamma API.
//
// Implementa ports.ProfileResolver: usernames via /public-search y wallets
// via /public-profile. Un target que no resuelve se salta con warning; el
// proceso solo falla si no queda NINGÚN target válido (eso lo decide main).

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

type rawProfile struct {
	Name        string `json:"name"`
	Pseudonym   string `json:"pseudonym"`
	ProxyWallet string `json:"proxyWallet"`
	Bio         string `json:"bio"`
}

type searchResponse struct {
	Profiles []rawProfile `json:"profiles"`
}

// ResolveUsers resuelve usernames a {wallet: display name}.
// Prefiere la coincidencia exacta de nombre; si no, el primer resultado.
func (c *Client) ResolveUsers(ctx context.Context, usernames []string) (map[string]string, error) {
	resolved := make(map[string]string, len(usernames))

	for _, username := range usernames {
		params := url.Values{}
		params.Set("q", username)
		params.Set("search_profiles", "true")

		var resp searchResponse
		err := c.get(ctx, c.gammaLimiter, queryURL(c.gammaBase, "/public-search", params), &resp)
		if err != nil {
			slog.Warn("profile search failed", "user", username, "err", err)
			continue
		}
		if len(resp.Profiles) == 0 {
			slog.Warn("user not found", "user", username)
			continue
		}

		profile := resp.Profiles[0]
		for _, p := range resp.Profiles {
			if strings.EqualFold(p.Name, username) {
				profile = p
				break
			}
		}
		if profile.ProxyWallet == "" {
			slog.Warn("profile without wallet", "user", username)
			continue
		}

		name := profile.Name
		if name == "" {
			name = profile.Pseudonym
		}
		resolved[strings.ToLower(profile.ProxyWallet)] = name
		slog.Info("resolved user", "user", username, "wallet", strings.ToLower(profile.ProxyWallet)[:12]+"...")
	}

	return resolved, nil
}

// ResolveWallets resuelve wallets a {wallet: display name}, usando la
// dirección acortada cuando no hay perfil público.
func (c *Client) ResolveWallets(ctx context.Context, wallets []string) (map[string]string, error) {
	resolved := make(map[string]string, len(wallets))

	for _, wallet := range wallets {
		wallet = strings.ToLower(wallet)
		fallback := wallet
		if len(fallback) > 12 {
			fallback = fallback[:12]
		}

		params := url.Values{}
		params.Set("address", wallet)

		var p rawProfile
		err := c.get(ctx, c.gammaLimiter, queryURL(c.gammaBase, "/public-profile", params), &p)
		if err != nil {
			slog.Warn("profile fetch failed, using short address", "wallet", fallback, "err", err)
			resolved[wallet] = fallback
			continue
		}

		name := p.Name
		if name == "" {
			name = p.Pseudonym
		}
		if name == "" {
			name = fallback
		}
		resolved[wallet] = name
	}

	if len(resolved) == 0 && len(wallets) > 0 {
		return nil, fmt.Errorf("polymarket.ResolveWallets: no wallet resolved")
	}
	return resolved, nil
}
