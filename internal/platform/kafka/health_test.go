package kafka

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckerReachableBroker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	checker := NewHealthChecker([]string{ln.Addr().String()})
	assert.NoError(t, checker.Check(context.Background()))
}

func TestHealthCheckerFallsThroughToReachableBroker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// One dead broker is tolerated as long as another answers.
	checker := NewHealthChecker([]string{"127.0.0.1:1", ln.Addr().String()})
	assert.NoError(t, checker.Check(context.Background()))
}

func TestHealthCheckerUnreachableBroker(t *testing.T) {
	checker := NewHealthChecker([]string{"127.0.0.1:1"})
	err := checker.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kafka brokers reachable")
}

func TestHealthCheckerNoBrokers(t *testing.T) {
	for _, brokers := range [][]string{nil, {}, {"", "  "}} {
		checker := NewHealthChecker(brokers)
		err := checker.Check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no kafka brokers configured")
	}
}

func TestHealthCheckerName(t *testing.T) {
	assert.Equal(t, "kafka", NewHealthChecker(nil).Name())
}
