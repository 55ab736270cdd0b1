package polymarket

// value.go — valor total de un wallet: posiciones Polymarket + USDC on-chain.
//
// Implementa ports.WalletValuer. El valor se usa solo para el sizing
// proporcional; cada pata degrada a cero ante fallo transitorio en lugar de
// tumbar el tick.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	// USDC.e en Polygon, 6 decimales.
	usdcAddress       = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	defaultPolygonRPC = "https://polygon-rpc.com"
)

var balanceOfABI abi.ABI

func init() {
	var err error
	balanceOfABI, err = abi.JSON(strings.NewReader(`[{
		"name":"balanceOf","type":"function",
		"inputs":[{"name":"account","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]
	}]`))
	if err != nil {
		panic("balanceOf abi: " + err.Error())
	}
}

type rawPosition struct {
	CurrentValue json.Number `json:"currentValue"`
}

// WalletValuer calcula el valor total de un wallet seguido.
type WalletValuer struct {
	client *Client
	rpc    *ethclient.Client
}

// NewWalletValuer crea el valuer. rpcURL vacío usa el RPC público de Polygon.
func NewWalletValuer(client *Client, rpcURL string) (*WalletValuer, error) {
	if rpcURL == "" {
		rpcURL = defaultPolygonRPC
	}
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("polymarket.NewWalletValuer: dial rpc: %w", err)
	}
	return &WalletValuer{client: client, rpc: rpc}, nil
}

// WalletValue devuelve posiciones + USDC on-chain en USDC.
func (v *WalletValuer) WalletValue(ctx context.Context, wallet string) (float64, error) {
	wallet = strings.ToLower(wallet)

	positions, err := v.positionsValue(ctx, wallet)
	if err != nil {
		slog.Debug("positions value fetch failed", "wallet", wallet, "err", err)
		positions = 0
	}

	balance, err := v.usdcBalance(ctx, wallet)
	if err != nil {
		slog.Debug("usdc balance fetch failed", "wallet", wallet, "err", err)
		balance = 0
	}

	return positions + balance, nil
}

// positionsValue suma el currentValue de las posiciones abiertas del wallet.
func (v *WalletValuer) positionsValue(ctx context.Context, wallet string) (float64, error) {
	params := url.Values{}
	params.Set("user", wallet)
	params.Set("sizeThreshold", "0.01")

	var resp []rawPosition
	if err := v.client.get(ctx, v.client.dataLimiter, queryURL(v.client.dataBase, "/positions", params), &resp); err != nil {
		return 0, fmt.Errorf("data-api positions: %w", err)
	}

	total := 0.0
	for _, p := range resp {
		value, _ := p.CurrentValue.Float64()
		total += value
	}
	return total, nil
}

// usdcBalance lee balanceOf(wallet) del contrato USDC vía eth_call.
func (v *WalletValuer) usdcBalance(ctx context.Context, wallet string) (float64, error) {
	callData, err := balanceOfABI.Pack("balanceOf", common.HexToAddress(wallet))
	if err != nil {
		return 0, fmt.Errorf("pack balanceOf: %w", err)
	}

	token := common.HexToAddress(usdcAddress)
	result, err := v.rpc.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: callData,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("eth_call: %w", err)
	}

	vals, err := balanceOfABI.Unpack("balanceOf", result)
	if err != nil || len(vals) == 0 {
		return 0, fmt.Errorf("unpack balanceOf: %w", err)
	}

	raw := vals[0].(*big.Int)
	bal, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), big.NewFloat(1e6)).Float64()
	return bal, nil
}
