package app

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/graphproc/internal/loader"
	"github.com/vk/graphproc/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Without
// modules the core modules are registered.
func SetupAppTest(t *testing.T, cfg Config, modules ...loader.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	testApp, err := NewApp(context.Background(), logBuffer, appConfig, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("GRAPHPROC_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return testApp, logBuffer
}
