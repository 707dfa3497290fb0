package okx

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

const (
	pathInstruments     = "/api/v5/public/instruments"
	pathTicker          = "/api/v5/market/ticker"
	pathAccountConfig   = "/api/v5/account/config"
	pathSetLeverage     = "/api/v5/account/set-leverage"
	pathSetPositionMode = "/api/v5/account/set-position-mode"
	pathPositions       = "/api/v5/account/positions"
	pathBalance         = "/api/v5/account/balance"
	pathOrder           = "/api/v5/trade/order"
)

// ErrNoData is returned when the exchange answered successfully with an empty data array.
var ErrNoData = errors.New("okx returned no data")

// Instruments lists instruments of instType. A non-empty instID narrows the result to one.
func (c *Client) Instruments(ctx context.Context, instType, instID string) ([]Instrument, error) {
	params := url.Values{"instType": []string{instType}}
	if instID != "" {
		params.Set("instId", instID)
	}

	var wire []instrumentWire
	if err := c.get(ctx, pathInstruments, params, false, &wire); err != nil {
		return nil, err
	}

	out := make([]Instrument, 0, len(wire))
	for _, w := range wire {
		out = append(out, toInstrument(w))
	}
	return out, nil
}

func (c *Client) Ticker(ctx context.Context, instID string) (Ticker, error) {
	var wire []tickerWire
	if err := c.get(ctx, pathTicker, url.Values{"instId": []string{instID}}, false, &wire); err != nil {
		return Ticker{}, err
	}
	if len(wire) == 0 {
		return Ticker{}, ErrNoData
	}
	return toTicker(wire[0]), nil
}

func (c *Client) AccountConfig(ctx context.Context) (AccountConfig, error) {
	var wire []accountConfigWire
	if err := c.get(ctx, pathAccountConfig, nil, true, &wire); err != nil {
		return AccountConfig{}, err
	}
	if len(wire) == 0 {
		return AccountConfig{}, ErrNoData
	}
	return toAccountConfig(wire[0]), nil
}

func (c *Client) SetLeverage(ctx context.Context, instID string, lever int, mgnMode string) (Leverage, error) {
	payload := leverageWire{
		InstID:  instID,
		Lever:   strconv.Itoa(lever),
		MgnMode: mgnMode,
	}
	var wire []leverageWire
	if err := c.post(ctx, pathSetLeverage, payload, &wire); err != nil {
		return Leverage{}, err
	}
	if len(wire) == 0 {
		return Leverage{InstID: instID, Lever: dec(payload.Lever), MgnMode: mgnMode}, nil
	}
	return Leverage{InstID: wire[0].InstID, Lever: dec(wire[0].Lever), MgnMode: wire[0].MgnMode}, nil
}

func (c *Client) SetPositionMode(ctx context.Context, mode PositionMode) (PositionMode, error) {
	var wire []positionModeWire
	if err := c.post(ctx, pathSetPositionMode, positionModeWire{PosMode: string(mode)}, &wire); err != nil {
		return "", err
	}
	if len(wire) == 0 {
		return mode, nil
	}
	return PositionMode(wire[0].PosMode), nil
}

// PlaceOrder submits one order. A per-item rejection is returned as *APIError.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (OrderAck, error) {
	var wire []orderAckWire
	if err := c.post(ctx, pathOrder, toOrderWire(req), &wire); err != nil {
		return OrderAck{}, err
	}
	if len(wire) == 0 {
		return OrderAck{}, ErrNoData
	}

	ack := OrderAck{
		OrdID:   wire[0].OrdID,
		ClOrdID: wire[0].ClOrdID,
		SCode:   wire[0].SCode,
		SMsg:    wire[0].SMsg,
	}
	if ack.SCode != "" && ack.SCode != "0" {
		return ack, &APIError{Code: "0", SCode: ack.SCode, SMsg: ack.SMsg}
	}
	return ack, nil
}

// Positions returns every position row, including rows with zero size.
func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	var wire []positionWire
	if err := c.get(ctx, pathPositions, nil, true, &wire); err != nil {
		return nil, err
	}
	out := make([]Position, 0, len(wire))
	for _, w := range wire {
		out = append(out, toPosition(w))
	}
	return out, nil
}

func (c *Client) Balance(ctx context.Context) (Balance, error) {
	var wire []balanceWire
	if err := c.get(ctx, pathBalance, nil, true, &wire); err != nil {
		return Balance{}, err
	}
	if len(wire) == 0 {
		return Balance{}, ErrNoData
	}
	return toBalance(wire[0]), nil
}
