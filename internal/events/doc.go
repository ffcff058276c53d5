// Package events defines the notifiable domain events and records them in the
// transactional outbox.
//
// Services call an Emitter with the transaction that carries the domain
// change, so the event row becomes visible to the outbox publisher only when
// that change commits. Payloads never contain the event id; the publisher adds
// eventId, eventType and createdAt when building the broker message.
package events
