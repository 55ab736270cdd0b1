package polymarket

// orders.go — Real order execution via Polymarket CLOB API.
//
// Implements ports.OrderExecutor using AuthClient for L1/L2 auth.
// Copied trades are submitted as FOK (fill-or-kill) marketable limit
// orders: either the whole notional crosses immediately or nothing does,
// so the ledger never has to track partial live fills.

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// clobOrderRequest is the JSON body sent to POST /order.
type clobOrderRequest struct {
	Order     clobOrderBody `json:"order"`
	Owner     string        `json:"owner"`
	OrderType string        `json:"orderType"`
}

type clobOrderBody struct {
	Salt          json.Number `json:"salt"`
	Maker         string      `json:"maker"`
	Signer        string      `json:"signer"`
	Taker         string      `json:"taker"`
	TokenID       string      `json:"tokenId"`
	MakerAmount   string      `json:"makerAmount"`
	TakerAmount   string      `json:"takerAmount"`
	Expiration    string      `json:"expiration"`
	Nonce         string      `json:"nonce"`
	FeeRateBps    string      `json:"feeRateBps"`
	Side          string      `json:"side"`
	SignatureType int         `json:"signatureType"`
	Signature     string      `json:"signature"`
}

type clobOrderResponse struct {
	ErrorMsg     string `json:"errorMsg"`
	OrderID      string `json:"orderID"`
	TakingAmount string `json:"takingAmount"`
	MakingAmount string `json:"makingAmount"`
	Status       string `json:"status"`
	Success      bool   `json:"success"`
}

type clobNegRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}

const (
	orderAttempts  = 3
	orderRetryWait = time.Second
)

// TradingClient implements ports.OrderExecutor against the live CLOB.
type TradingClient struct {
	auth *AuthClient

	// cache neg-risk por token; el flag de un mercado no cambia
	negRisk map[string]bool
}

// NewTradingClient creates a TradingClient on top of an authenticated client.
func NewTradingClient(auth *AuthClient) *TradingClient {
	return &TradingClient{
		auth:    auth,
		negRisk: make(map[string]bool),
	}
}

// PlaceMarketOrder signs and submits a FOK marketable limit order.
// The request is retried up to three times with a fixed pause; a rejection
// from the CLOB (not success, or errorMsg set) is retried like a transport
// failure because transient "not enough balance / allowance" responses
// resolve between attempts.
func (tc *TradingClient) PlaceMarketOrder(ctx context.Context, asset string, side domain.Side, notional, price float64) (domain.OrderResult, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return domain.OrderResult{}, fmt.Errorf("place order: creds: %w", err)
	}

	negRisk, err := tc.isNegRisk(ctx, asset)
	if err != nil {
		slog.Debug("neg-risk check failed, assuming standard exchange", "asset", domain.Truncate(asset, 16), "err", err)
		negRisk = false
	}

	var lastErr error
	for attempt := 1; attempt <= orderAttempts; attempt++ {
		resp, err := tc.submit(ctx, asset, side, notional, price, negRisk)
		if err == nil {
			return domain.OrderResult{
				OrderID:      resp.OrderID,
				Status:       resp.Status,
				TakingAmount: parseUSDC(resp.TakingAmount),
				MakingAmount: parseUSDC(resp.MakingAmount),
			}, nil
		}
		lastErr = err
		if attempt < orderAttempts {
			slog.Warn("order attempt failed, retrying",
				"attempt", attempt, "asset", domain.Truncate(asset, 16), "err", err)
			select {
			case <-ctx.Done():
				return domain.OrderResult{}, ctx.Err()
			case <-time.After(orderRetryWait):
			}
		}
	}
	return domain.OrderResult{}, fmt.Errorf("place order after %d attempts: %w", orderAttempts, lastErr)
}

// submit builds, signs and posts a single order.
func (tc *TradingClient) submit(ctx context.Context, asset string, side domain.Side, notional, price float64, negRisk bool) (*clobOrderResponse, error) {
	signed, err := tc.auth.buildSignedMarketOrder(asset, side, notional, price, negRisk)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	body := clobOrderRequest{
		Order: clobOrderBody{
			Salt:          json.Number(signed.Order.Salt.String()),
			Maker:         signed.Order.Maker.Hex(),
			Signer:        signed.Order.Signer.Hex(),
			Taker:         signed.Order.Taker.Hex(),
			TokenID:       asset,
			MakerAmount:   signed.Order.MakerAmount.String(),
			TakerAmount:   signed.Order.TakerAmount.String(),
			Expiration:    signed.Order.Expiration.String(),
			Nonce:         signed.Order.Nonce.String(),
			FeeRateBps:    signed.Order.FeeRateBps.String(),
			Side:          string(side),
			SignatureType: int(signed.Order.SignatureType.Int64()),
			Signature:     "0x" + hex.EncodeToString(signed.Signature),
		},
		Owner:     tc.auth.creds.APIKey,
		OrderType: "FOK",
	}

	var resp clobOrderResponse
	if err := tc.auth.doL2(ctx, http.MethodPost, "/order", body, &resp); err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}

	if !resp.Success || resp.ErrorMsg != "" {
		return nil, fmt.Errorf("clob rejected: %s", resp.ErrorMsg)
	}
	return &resp, nil
}

// isNegRisk queries the CLOB to determine if a token uses the NegRisk adapter.
func (tc *TradingClient) isNegRisk(ctx context.Context, tokenID string) (bool, error) {
	if v, ok := tc.negRisk[tokenID]; ok {
		return v, nil
	}

	url := fmt.Sprintf("%s/neg-risk?token_id=%s", tc.auth.clobBase, tokenID)

	var resp clobNegRiskResponse
	if err := tc.auth.get(ctx, tc.auth.clobLimiter, url, &resp); err != nil {
		return false, fmt.Errorf("neg-risk check: %w", err)
	}
	tc.negRisk[tokenID] = resp.NegRisk
	return resp.NegRisk, nil
}

// parseUSDC converts a micro-USDC string (e.g., "1000000") to USDC float.
func parseUSDC(s string) float64 {
	if s == "" {
		return 0
	}
	n := new(big.Int)
	n.SetString(s, 10)
	f, _ := new(big.Float).SetInt(n).Float64()
	return f / 1_000_000
}
