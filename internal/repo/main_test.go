package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/testutil"
)

// TestMain migrates the test database once; without one, every test in the
// package skips itself.
func TestMain(m *testing.M) {
	if dsn := os.Getenv(testutil.DSNVar); dsn != "" {
		if err := testutil.Migrate(context.Background(), dsn); err != nil {
			log.Fatalf("repo tests: %v", err)
		}
	}
	os.Exit(m.Run())
}
