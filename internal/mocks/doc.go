// Package mocks provides shared test doubles for the store, auth and
// transaction interfaces.
//
// Every mock has Fn fields that override a single method. Without an
// override the store mocks behave like small in-memory databases returning
// the same sentinel errors as the Postgres stores, so a service test can
// seed data and assert on the resulting state:
//
//	projects := mocks.NewMockProjectStore(project)
//	projects.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
//	    return nil, errors.New("connection reset")
//	}
//
// WithTx on each store mock returns the mock itself, and MockTransactor
// invokes the callback with a nil transaction.
package mocks
