// Package ledger provides an in-process account ledger implementing the
// engine's value-transfer substrate.
//
// Balances are plain integer amounts keyed by account id. Settle applies a
// batch of entries atomically: every debit is validated against the running
// balance before anything is written, so a failed batch leaves all balances
// untouched. Applied batches are recorded as transactions with unique ids
// for audit.
package ledger
