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
	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// clobServer simula /price y /midpoint con los precios dados. Un valor cero
// responde 404 para ese nivel.
func clobServer(t *testing.T, bid, ask, mid float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/price":
			price := bid
			if r.URL.Query().Get("side") == "BUY" {
				price = ask
			}
			if price <= 0 {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]float64{"price": price})
		case "/midpoint":
			if mid <= 0 {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]float64{"mid": mid})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestGetQuote_FullBook(t *testing.T) {
	srv := clobServer(t, 0.48, 0.52, 0.50)
	defer srv.Close()

	client := polymarket.NewClient(srv.URL, "", "")
	q, err := client.GetQuote(context.Background(), "tok1")

	require.NoError(t, err)
	assert.InDelta(t, 0.48, q.Bid, 1e-9)
	assert.InDelta(t, 0.52, q.Ask, 1e-9)
	assert.InDelta(t, 0.50, q.Mid, 1e-9)
}

func TestGetQuote_MidOnlyFallback(t *testing.T) {
	srv := clobServer(t, 0, 0, 0.50)
	defer srv.Close()

	client := polymarket.NewClient(srv.URL, "", "")
	q, err := client.GetQuote(context.Background(), "tok1")

	require.NoError(t, err)
	assert.InDelta(t, 0.495, q.Bid, 1e-9)
	assert.InDelta(t, 0.505, q.Ask, 1e-9)
}

func TestGetQuote_MidFromBidAsk(t *testing.T) {
	srv := clobServer(t, 0.40, 0.44, 0)
	defer srv.Close()

	client := polymarket.NewClient(srv.URL, "", "")
	q, err := client.GetQuote(context.Background(), "tok1")

	require.NoError(t, err)
	assert.InDelta(t, 0.42, q.Mid, 1e-9)
}

func TestExecutionPrice_SideSelection(t *testing.T) {
	srv := clobServer(t, 0.48, 0.52, 0.50)
	defer srv.Close()

	client := polymarket.NewClient(srv.URL, "", "")

	ask, err := client.ExecutionPrice(context.Background(), "tok1", domain.SideBuy)
	require.NoError(t, err)
	assert.InDelta(t, 0.52, ask, 1e-9)

	bid, err := client.ExecutionPrice(context.Background(), "tok1", domain.SideSell)
	require.NoError(t, err)
	assert.InDelta(t, 0.48, bid, 1e-9)
}

func TestExecutionPrice_NoPrice(t *testing.T) {
	srv := clobServer(t, 0, 0, 0)
	defer srv.Close()

	client := polymarket.NewClient(srv.URL, "", "")

	_, err := client.ExecutionPrice(context.Background(), "tok1", domain.SideBuy)
	assert.ErrorIs(t, err, domain.ErrNoPrice)
}
