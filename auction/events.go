package auction

import "context"

// Event is a lifecycle notification emitted by the engine. Name doubles as
// the routing key for message-broker sinks.
type Event interface {
	Name() string
}

// AuctionCreated is emitted after a successful CreateAuction.
type AuctionCreated struct {
	ID            ID        `json:"id"`
	Seller        AccountID `json:"seller"`
	Item          string    `json:"item"`
	StartingPrice Amount    `json:"starting_price"`
	Duration      int64     `json:"duration"`
}

func (AuctionCreated) Name() string { return "auction.created" }

// AuctionEnded is emitted after a successful Buy.
type AuctionEnded struct {
	ID         ID        `json:"id"`
	FinalPrice Amount    `json:"final_price"`
	Buyer      AccountID `json:"buyer"`
}

func (AuctionEnded) Name() string { return "auction.ended" }

// EventSink consumes lifecycle events. Sinks are observers only: a sink
// error never fails the operation that produced the event, it is logged and
// dropped.
type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(ctx context.Context, ev Event) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, ev Event) error { return f(ctx, ev) }
