package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/automationvault/internal/config"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{ServiceName: "automationvault"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
