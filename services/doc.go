// Package services provides the engine's infrastructure adapters: a
// PostgreSQL-backed auction store for durable deployments and an AMQP
// publisher that forwards lifecycle events to a message broker.
//
// Both are drop-in collaborators for the core: PostgresStore implements
// auction.Store and AMQPEvents implements auction.EventSink. Deployments
// without a database or broker run on auction.MemoryStore and in-process
// sinks instead.
package services
