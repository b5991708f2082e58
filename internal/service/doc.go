// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// AccountService owns registration, the three login paths (password, one-time
// code, refresh token) and bearer-token authentication. TaskService owns the
// caller's tasks; every operation receives the caller's user ID explicitly
// and never touches another user's records.
//
// The service layer depends on domain entities and repository interfaces
// (from store), never on specific infrastructure implementations.
package service
