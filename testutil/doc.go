// Package testutil provides shared fixtures for testing the settlement
// engine: a manually advanced clock, pre-funded ledgers and a fully wired
// engine fixture with customizable options.
//
// Typical usage:
//
//	fix := testutil.NewEngineFixture(
//	    testutil.WithBalance("buyer-1", 1_000_000),
//	)
//	id, err := fix.Engine.CreateAuction(ctx, req)
//	fix.Clock.Advance(10 * time.Second)
package testutil
