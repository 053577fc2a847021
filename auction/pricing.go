package auction

import "time"

// CurrentPrice computes the auction's price at the given instant:
// startingPrice - discountRate * elapsedSeconds.
//
// The function is pure and performs no clamping. Callers must ensure
// now >= StartAt (always true for a live clock, since StartAt is set at
// creation) and must check EndAt before using the result for settlement;
// past EndAt the linear extrapolation is meaningless and eventually goes
// negative.
func CurrentPrice(a *Auction, now time.Time) Amount {
	elapsed := now.Unix() - a.StartAt
	return a.StartingPrice - a.DiscountRate*Amount(elapsed)
}
