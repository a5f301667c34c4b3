// Package guard forces test mode before any application package initialises,
// so importing it first in a test file prevents runtime side effects.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("RENTFOLIO_TEST_MODE") == "" {
			_ = os.Setenv("RENTFOLIO_TEST_MODE", "1")
		}
	})
}
