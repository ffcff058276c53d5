// Package outbox publishes events recorded in the outbox table to the message
// broker with at-least-once delivery.
//
// A Publisher runs one cycle per interval. Each cycle reads a bounded batch in
// insertion order, publishes every event and waits for the broker ack, then
// deletes the event. Unacknowledged events stay in the table and are retried
// on the next cycle, so consumers must deduplicate on the eventId field.
// Cycles never overlap within a process; an optional Locker extends that
// guarantee across replicas.
package outbox
