// Package domain contains the core business entities of the service: users,
// projects with their collaborators, tasks and outbox events. Entities
// validate themselves and are independent of storage and transport.
package domain
