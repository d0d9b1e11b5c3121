package common

// MessageKind tags the payload an agent hands back to the game loop each
// tick. Adapted from the teacher's net.Message interface (which tagged wire
// messages by MessageType); here the tag selects in-process dispatch
// instead of a binary decoder.
type MessageKind int

const (
	// OrderMessage wraps an Order the engine should submit.
	OrderMessage MessageKind = iota
	// RemoveMessage wraps an OrderID the engine should cancel.
	RemoveMessage
	// ConversionMessage wraps a ConversionRequest the game loop applies
	// out-of-band, bypassing the book entirely.
	ConversionMessage
)

// Message is a single instruction an agent returns from OnBook. Exactly one
// of Order, OrderID or Conversion is populated, selected by Kind.
type Message struct {
	Kind       MessageKind
	Order      Order
	OrderID    int64
	Conversion ConversionRequest
}

// NewOrderMessage wraps an Order for submission.
func NewOrderMessage(order Order) Message {
	return Message{Kind: OrderMessage, Order: order}
}

// NewRemoveMessage wraps an OrderID for cancellation.
func NewRemoveMessage(orderID int64) Message {
	return Message{Kind: RemoveMessage, OrderID: orderID}
}

// NewConversionMessage wraps a conversion request.
func NewConversionMessage(req ConversionRequest) Message {
	return Message{Kind: ConversionMessage, Conversion: req}
}

// ConversionRequest asks the game loop to trade a composite product for
// fixed integer quantities of its constituents, bypassing the book.
type ConversionRequest struct {
	Ticker  string
	Size    int64
	Dir     Side
	BotName string
}

// ConversionResult is the position-change map produced by executing a
// ConversionRequest, applied directly to the requesting agent's positions.
// This is intentionally the entire contract: the basket decomposition math
// is an out-of-band extension point, not part of the matching core.
type ConversionResult struct {
	PosChanges map[string]int64
}
