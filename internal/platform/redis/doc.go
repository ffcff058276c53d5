// Package redis provides the distributed lock that keeps outbox publishers in
// different replicas from running cycles at the same time.
package redis
