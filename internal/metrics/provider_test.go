package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("disclosure")
	require.NoError(t, err)
	assert.NotNil(t, provider.meterProvider)
	assert.NotNil(t, provider.exporter)
	assert.NotNil(t, provider.registry)
	assert.NotNil(t, provider.MeterProvider())
}

func TestProvider_HandlerUsesPrivateRegistry(t *testing.T) {
	provider, err := NewProvider("disclosure")
	require.NoError(t, err)

	output := scrape(t, provider)
	assert.NotContains(t, output, "go_goroutines", "default collectors must not be exported")
}

func TestProvider_Shutdown(t *testing.T) {
	provider, err := NewProvider("disclosure")
	require.NoError(t, err)
	assert.NoError(t, provider.Shutdown(context.Background()))

	empty := &Provider{}
	assert.NoError(t, empty.Shutdown(context.Background()))
}
