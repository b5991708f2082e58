// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, tasks, task statuses and the
// field-keyed validation error shared by every layer. It is independent of
// any specific infrastructure or delivery mechanism.
package domain
