// Package rabbitmq publishes outbox messages to RabbitMQ in publisher-confirm
// mode behind a circuit breaker.
package rabbitmq
