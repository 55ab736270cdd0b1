package polymarket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InkedLau/Polymarket-Copytrading/internal/adapters/polymarket"
)

func TestResolveUsers_ExactMatchPreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/public-search", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("search_profiles"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"profiles": []map[string]string{
				{"name": "whale-fan", "proxyWallet": "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
				{"name": "Whale", "proxyWallet": "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"},
			},
		})
	}))
	defer srv.Close()

	client := polymarket.NewClient("", srv.URL, "")
	resolved, err := client.ResolveUsers(context.Background(), []string{"whale"})

	require.NoError(t, err)
	require.Len(t, resolved, 1)
	// Coincidencia exacta (case-insensitive) gana sobre el primer resultado
	assert.Equal(t, "Whale", resolved["0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"])
}

func TestResolveUsers_UnknownUserSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"profiles": []any{}})
	}))
	defer srv.Close()

	client := polymarket.NewClient("", srv.URL, "")
	resolved, err := client.ResolveUsers(context.Background(), []string{"nobody"})

	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestResolveWallets_ProfileName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/public-profile", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"name":        "BigTrader",
			"proxyWallet": r.URL.Query().Get("address"),
		})
	}))
	defer srv.Close()

	client := polymarket.NewClient("", srv.URL, "")
	resolved, err := client.ResolveWallets(context.Background(),
		[]string{"0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"})

	require.NoError(t, err)
	assert.Equal(t, "BigTrader", resolved["0xcccccccccccccccccccccccccccccccccccccccc"])
}

func TestResolveWallets_FallbackToShortAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	client := polymarket.NewClient("", srv.URL, "")
	resolved, err := client.ResolveWallets(context.Background(),
		[]string{"0xDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDD"})

	require.NoError(t, err)
	assert.Equal(t, "0xdddddddddd", resolved["0xdddddddddddddddddddddddddddddddddddddddd"])
}
