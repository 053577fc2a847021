package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shkulipa/auction-contract/auction"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is CORS-open; the feed follows suit.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	feedTickInterval = 1 * time.Second
	feedPingInterval = 30 * time.Second
	feedReadDeadline = 60 * time.Second
)

type feedMessage struct {
	Type       string         `json:"type"` // "price", "settled" or "ended"
	AuctionID  auction.ID     `json:"auction_id"`
	Price      auction.Amount `json:"price,omitempty"`
	FinalPrice auction.Amount `json:"final_price,omitempty"`
	At         int64          `json:"at"`
}

// priceFeed streams the auction's decaying price over a websocket, one tick
// per second, and closes after a terminal "settled" or "ended" message.
func (h *Handler) priceFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}

	if _, err := h.engine.GetAuction(r.Context(), id); err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.log.Debug("feed upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(feedReadDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(feedReadDeadline))
		return nil
	})

	// Drain client frames so pongs and close messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	tick := time.NewTicker(feedTickInterval)
	defer tick.Stop()
	ping := time.NewTicker(feedPingInterval)
	defer ping.Stop()

	// First tick immediately, then every interval.
	for {
		if done := h.sendTick(conn, id); done {
			return
		}

		select {
		case <-tick.C:
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// sendTick writes one feed message and reports whether the stream is done.
func (h *Handler) sendTick(conn *websocket.Conn, id auction.ID) bool {
	ctx := context.Background()
	now := h.clock.Now()

	a, err := h.engine.GetAuction(ctx, id)
	if err != nil {
		return true
	}

	msg := feedMessage{AuctionID: id, At: now.Unix()}
	terminal := false
	switch {
	case a.Stopped:
		msg.Type = "settled"
		msg.FinalPrice = a.FinalPrice
		terminal = true
	case now.Unix() > a.EndAt:
		// The record is never mutated by expiry; the feed just stops
		// following it.
		msg.Type = "ended"
		terminal = true
	default:
		price, err := h.engine.GetPriceFor(ctx, id)
		if err != nil {
			// Settled between the two reads.
			if errors.Is(err, auction.ErrStopped) {
				if a, err = h.engine.GetAuction(ctx, id); err != nil {
					return true
				}
				msg.Type = "settled"
				msg.FinalPrice = a.FinalPrice
				terminal = true
				break
			}
			return true
		}
		msg.Type = "price"
		msg.Price = price
	}

	if err := conn.WriteJSON(msg); err != nil {
		return true
	}
	return terminal
}
