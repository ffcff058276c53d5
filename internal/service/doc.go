// Package service contains the application use cases: user registration and
// login, projects, collaborators and tasks.
//
// Every project-scoped operation takes the caller's user name explicitly and
// starts with an access.Guard check, before any other read or write. Writes
// that must commit together run through a store.Transactor, and notifiable
// changes record their outbox event inside that same transaction.
//
// Task writes report business rejections as a TaskResult outcome rather than
// an error. Rejections from the guard and infrastructure failures are
// returned as errors wrapped in ServiceError.
package service
