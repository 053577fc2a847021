// Package auction implements a Dutch-auction settlement engine.
//
// A seller lists an item at a starting price that decays linearly over a
// fixed window. A buyer settles the auction at the current decayed price;
// the engine deducts a protocol fee, pays out the seller and refunds any
// overpayment in a single atomic ledger batch.
//
// # Components
//
// The package is organized leaf-first:
//
//   - CurrentPrice is the pure pricing function.
//   - Store owns the append-only collection of auction records; MemoryStore
//     is the in-process implementation.
//   - Engine orchestrates creation and settlement on top of a Store, a
//     Ledger and a Clock, and notifies registered EventSinks.
//
// The Ledger and Clock are host collaborators: the engine never manages
// balances itself, it only issues atomic transfer batches.
//
// # Lifecycle
//
// An auction is Active from creation and transitions to settled exactly once
// via Buy. There is no auto-expiry: an auction that is never bought stays in
// the store forever, and buying past its end time fails without mutating the
// record. Records are append-only; ids are 0-based, sequential and never
// reused.
//
// # Failure ordering
//
// Buy reports at most one of its failure conditions, checked in a fixed
// order: stopped, then expired, then insufficient funds. An auction that is
// both settled and past its end time reports ErrStopped.
package auction
