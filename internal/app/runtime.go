package app

import (
	"os"
	"strconv"
	"sync"
)

const testModeEnv = "ODYSSEY_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return parseTestMode(os.Getenv(testModeEnv))
})

// InTestMode reports whether binaries should exit before connecting to
// PostgreSQL and Redis. The flag is read once per process.
func InTestMode() bool {
	return testMode()
}

func parseTestMode(raw string) bool {
	on, err := strconv.ParseBool(raw)
	return err == nil && on
}
