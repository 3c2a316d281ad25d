package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanonhq/kanon/internal/config"
	"github.com/kanonhq/kanon/internal/log"
)

func TestSetupDisabled(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), config.TracingConfig{}, log.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	t.Parallel()

	// The exporter connects lazily; setup succeeds even without a
	// listening collector, and shutdown flushes whatever it can.
	shutdown, err := Setup(context.Background(), config.TracingConfig{
		Endpoint:    "localhost:4318",
		ServiceName: "kanon-test",
		Environment: "test",
	}, log.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
