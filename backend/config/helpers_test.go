// ABOUTME: Test helpers for config tests
// ABOUTME: Provides a clean environment with no .env file in reach

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// withCleanEnv clears the environment, points ENV_FILE at a file that does
// not exist and sets any extra values. The original environment is restored
// when the test ends.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    withCleanEnv(t, map[string]string{"PORT": "9090"})
//	}
func withCleanEnv(t *testing.T, extra map[string]string) {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()

	os.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	os.Setenv("LUCKYDRAW_CONFIG_DIR", t.TempDir())
	for key, value := range extra {
		os.Setenv(key, value)
	}

	t.Cleanup(func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i := 0; i < len(env); i++ {
				if env[i] == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	})
}
