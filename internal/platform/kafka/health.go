// Package kafka provides broker connectivity checks for health reporting.
package kafka

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// HealthChecker reports broker reachability for readiness checks. It dials
// raw TCP instead of going through the producer client, so a wedged producer
// cannot mask the state of the cluster itself.
type HealthChecker struct {
	brokers []string
	timeout time.Duration
}

// NewHealthChecker creates a health checker over the configured broker list.
func NewHealthChecker(brokers []string) *HealthChecker {
	return &HealthChecker{
		brokers: brokers,
		timeout: 5 * time.Second,
	}
}

// Check verifies connectivity to the brokers.
// Returns nil if at least one broker is reachable.
func (h *HealthChecker) Check(ctx context.Context) error {
	var lastErr error
	for _, broker := range h.brokers {
		broker = strings.TrimSpace(broker)
		if broker == "" {
			continue
		}

		dialer := net.Dialer{Timeout: h.timeout}
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		conn.Close()
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("no kafka brokers reachable: %w", lastErr)
	}
	return fmt.Errorf("no kafka brokers configured")
}

// Name returns the check name for health reporting.
func (h *HealthChecker) Name() string {
	return "kafka"
}
