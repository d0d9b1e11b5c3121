package common

import "fmt"

// Order is a submission to the matching engine: a request to buy or sell
// Size units of Ticker at Price (or better). The engine keeps one OrderID
// index shared by all agents, so an OrderID must not repeat one already
// resting from any agent; the engine treats such a collision as a hard,
// message-local error (ErrDuplicateOrderID).
type Order struct {
	Ticker  string
	Price   float64
	Size    int64
	OrderID int64
	Dir     Side
	BotName string
}

// NewOrder validates and constructs an Order. Size must be a positive
// integer; that is the only check made. Price and Dir are not validated
// (any Side other than Buy is treated as Sell by Side.Sign).
func NewOrder(ticker string, price float64, size int64, orderID int64, dir Side, botName string) (Order, error) {
	if size <= 0 {
		return Order{}, fmt.Errorf("%w: size must be a positive integer, got %d (bot %s)", ErrInvalidOrder, size, botName)
	}
	return Order{
		Ticker:  ticker,
		Price:   price,
		Size:    size,
		OrderID: orderID,
		Dir:     dir,
		BotName: botName,
	}, nil
}

// Aggness is the signed comparable score making both book sides comparable:
// price for bids, -price for asks. Larger is more aggressive.
func (o Order) Aggness() float64 {
	return o.Price * o.Dir.Sign()
}

func (o Order) String() string {
	return fmt.Sprintf("%s wants to %s %d %s at %f", o.BotName, o.Dir, o.Size, o.Ticker, o.Price)
}
