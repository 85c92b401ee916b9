package usecase

import (
	"testing"

	"go.uber.org/goleak"
)

// The sync manager owns a worker goroutine; fail the package if any test
// leaves one behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
