// Package store declares the persistence ports for users, projects, project
// access grants, tasks and outbox events, together with the transaction
// helpers and the not-found and duplicate error families that
// implementations map their driver errors onto.
package store
