// Package mocks provides centralized mock implementations for testing.
//
// The store mocks are small in-memory implementations that honor the same
// contracts as the PostgreSQL and Redis stores (owner scoping, ordering,
// sentinel errors), so service and API tests exercise real behavior without
// external dependencies. Each mock also exposes function fields or error
// fields for injecting failures.
//
// Usage:
//
//	users := mocks.NewMockUserStore()
//	tasks := mocks.NewMockTaskStore()
//	svc, err := service.NewTaskService(tasks, mocks.Transactor{}, nil)
package mocks
