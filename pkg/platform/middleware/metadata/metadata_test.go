package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"veripass/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		remoteAddr     string
		trustedProxies []string
		expectedIP     string
	}{
		{
			name: "ignores XFF when no trusted proxies",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
			},
			remoteAddr:     "192.168.1.1:12345",
			trustedProxies: nil,
			expectedIP:     "192.168.1.1",
		},
		{
			name: "trusts XFF when request from trusted proxy",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "203.0.113.1",
		},
		{
			name: "uses first IP in XFF chain",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1, 10.0.0.2, 10.0.0.3",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "203.0.113.1",
		},
		{
			name:           "falls back to RemoteAddr when no headers",
			headers:        map[string]string{},
			remoteAddr:     "192.168.1.100:54321",
			trustedProxies: nil,
			expectedIP:     "192.168.1.100",
		},
		{
			name: "trusts X-Real-IP from trusted proxy",
			headers: map[string]string{
				"X-Real-IP": "203.0.113.7",
			},
			remoteAddr:     "10.0.0.1:8080",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "203.0.113.7",
		},
		{
			name: "rejects oversized XFF header",
			headers: map[string]string{
				"X-Forwarded-For": strings.Repeat("1", MaxXFFHeaderLength+1),
			},
			remoteAddr:     "10.0.0.1:8080",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "10.0.0.1",
		},
		{
			name: "rejects malformed XFF entry",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip",
			},
			remoteAddr:     "10.0.0.1:8080",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "10.0.0.1",
		},
		{
			name:           "strips brackets from IPv6 RemoteAddr",
			headers:        map[string]string{},
			remoteAddr:     "[::1]:8080",
			trustedProxies: nil,
			expectedIP:     "::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedCtx context.Context
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
				w.WriteHeader(http.StatusOK)
			})

			var prefixes []netip.Prefix
			for _, cidr := range tt.trustedProxies {
				prefix, _ := netip.ParsePrefix(cidr)
				prefixes = append(prefixes, prefix)
			}
			cfg := &Config{TrustedProxies: prefixes}
			mw := NewMiddleware(cfg)
			handler := mw.Handler(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedIP, requestcontext.ClientIP(capturedCtx))
		})
	}
}

func TestNewMiddlewareNilConfig(t *testing.T) {
	mw := NewMiddleware(nil)
	assert.Empty(t, mw.config.TrustedProxies, "nil config must default to no trusted proxies")
}
