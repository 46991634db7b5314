package testutil

import (
	"fmt"
	"os"
	"testing"
)

// SetTestEnvironment forces GO_ENV=test. Call it from TestMain before
// any configuration is loaded so the database guard in config.Validate
// treats the run as a test run.
func SetTestEnvironment() error {
	if err := os.Setenv("GO_ENV", "test"); err != nil {
		return fmt.Errorf("failed to set GO_ENV=test: %w", err)
	}
	return nil
}

// RequireTestEnvironment fails the test unless GO_ENV is "test". This
// keeps suites that touch the active database handle from running
// against a development or production database by accident.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("Tests must run with GO_ENV=test, got %q", env)
	}
}
