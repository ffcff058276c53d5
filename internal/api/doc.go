// Package api contains the HTTP handlers for accounts, projects,
// collaborators and tasks. Handlers decode and validate JSON requests, take
// the caller from the authenticated request context and translate service
// results and errors into status codes. Error bodies never carry internal
// error text.
package api
