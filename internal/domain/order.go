package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Paper trading ledger. Orders never reach an exchange: market tickets
// fill immediately at the live price, limit tickets sit in the open list
// until cancelled. All money math is decimal.

const (
	SideUp   = "UP"
	SideDown = "DOWN"

	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"

	OrderStatusOpen     = "OPEN"
	OrderStatusFilled   = "FILLED"
	OrderStatusCanceled = "CANCELED"

	MinLeverage = 1
	MaxLeverage = 50
)

// FeeRate is the flat taker fee applied to ticket value.
var FeeRate = decimal.NewFromFloat(0.001)

// Ticket is a user's order request before it becomes an Order.
type Ticket struct {
	Symbol     string
	Side       string // SideUp, SideDown
	Type       string // OrderTypeMarket, OrderTypeLimit
	Amount     decimal.Decimal
	LimitPrice decimal.Decimal // ignored for market tickets
	Leverage   int
}

// CostEstimate is the fee breakdown shown before submission.
type CostEstimate struct {
	Value decimal.Decimal // amount * price
	Fee   decimal.Decimal
	Total decimal.Decimal // cost for UP, estimated receive for DOWN
}

// Price resolves the execution price for the ticket.
func (t Ticket) Price(lastPrice decimal.Decimal) decimal.Decimal {
	if t.Type == OrderTypeLimit {
		return t.LimitPrice
	}
	return lastPrice
}

// Estimate computes value, fee and total at the given live price.
func (t Ticket) Estimate(lastPrice decimal.Decimal) CostEstimate {
	px := t.Price(lastPrice)
	value := t.Amount.Mul(px)
	fee := value.Mul(FeeRate)

	total := value.Add(fee)
	if t.Side == SideDown {
		total = value.Sub(fee)
		if total.IsNegative() {
			total = decimal.Zero
		}
	}
	return CostEstimate{Value: value, Fee: fee, Total: total}
}

// Validate mirrors the submit gate: positive amount, positive limit price
// for limit tickets, and UP tickets must fit within the balance.
func (t Ticket) Validate(balance, lastPrice decimal.Decimal) error {
	if t.Side != SideUp && t.Side != SideDown {
		return errors.New("ticket side must be UP or DOWN")
	}
	if t.Type != OrderTypeMarket && t.Type != OrderTypeLimit {
		return errors.New("ticket type must be MARKET or LIMIT")
	}
	if !t.Amount.IsPositive() {
		return errors.New("ticket amount must be positive")
	}
	if t.Type == OrderTypeLimit && !t.LimitPrice.IsPositive() {
		return errors.New("limit ticket requires a positive price")
	}
	if t.Leverage < MinLeverage || t.Leverage > MaxLeverage {
		return errors.New("leverage out of range")
	}
	if t.Side == SideUp {
		if t.Estimate(lastPrice).Total.GreaterThan(balance) {
			return errors.New("insufficient balance for UP ticket")
		}
	}
	return nil
}

// Order is a ledger entry created from an accepted ticket.
type Order struct {
	ID        string
	Symbol    string
	Side      string
	Type      string
	Price     decimal.Decimal
	Amount    decimal.Decimal
	Status    string
	CreatedAt time.Time
}

// IsOpen reports whether the order still sits in the open list.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// NewOrder builds a ledger entry from an accepted ticket. Market orders
// are born filled (TR- prefix), limit orders open (OD- prefix).
func NewOrder(t Ticket, lastPrice decimal.Decimal, now time.Time) Order {
	o := Order{
		Symbol:    t.Symbol,
		Side:      t.Side,
		Type:      t.Type,
		Price:     t.Price(lastPrice),
		Amount:    t.Amount,
		CreatedAt: now,
	}
	short := uuid.NewString()[:8]
	if t.Type == OrderTypeMarket {
		o.ID = "TR-" + short
		o.Status = OrderStatusFilled
	} else {
		o.ID = "OD-" + short
		o.Status = OrderStatusOpen
	}
	return o
}
