package entity

import (
	"fmt"
	"strings"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether s is one of the supported sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderType is the execution style of an order.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
)

// QuickLotSize is the fixed volume of a quick order.
const QuickLotSize = 0.01

// OrderRequest is the payload sent to the open-position endpoint.
type OrderRequest struct {
	SymbolID     string    `json:"symbolId"`
	Side         Side      `json:"side"`
	LotSize      float64   `json:"lotSize"`
	OrderType    OrderType `json:"orderType"`
	TriggerPrice *float64  `json:"triggerPrice"`
	StopLoss     *float64  `json:"stopLoss"`
	TakeProfit   *float64  `json:"takeProfit"`
	Comment      string    `json:"comment"`
}

// NewQuickOrder builds a market order of QuickLotSize for symbol.
func NewQuickOrder(symbol string, side Side) OrderRequest {
	return OrderRequest{
		SymbolID:  symbol,
		Side:      side,
		LotSize:   QuickLotSize,
		OrderType: OrderTypeMarket,
		Comment:   fmt.Sprintf("Quick %s %s", strings.ToUpper(string(side)), symbol),
	}
}
