//go:build integration

// Package testdb provides utilities for tests that run against a real
// PostgreSQL database.
//
// Tests run inside a transaction that is rolled back when the test
// completes, so they can run in parallel without interfering with each
// other and need no manual cleanup:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        userStore := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)
//	        // ...
//	    })
//	}
//
// Tests are skipped when DATABASE_URL (or TASKS_TEST_DB_URL) is unset.
package testdb
