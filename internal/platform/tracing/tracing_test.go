package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))

	var nilProvider *Provider
	assert.NoError(t, nilProvider.Shutdown(context.Background()))
}

func TestProviderValidation(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true})
	assert.Error(t, err)

	_, err = NewProvider(context.Background(), Config{Enabled: true, ServiceName: "svc", SamplingRate: 2})
	assert.Error(t, err)
}
