package clientip

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"civic/pkg/requestcontext"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trusted    []string
		want       string
	}{
		{
			name:       "ignores XFF from untrusted peer",
			remoteAddr: "192.168.1.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			want:       "192.168.1.1",
		},
		{
			name:       "trusts XFF from trusted proxy",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"},
			trusted:    []string{"10.0.0.0/8"},
			want:       "203.0.113.1",
		},
		{
			name:       "falls back to X-Real-IP",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			trusted:    []string{"10.0.0.0/8"},
			want:       "198.51.100.9",
		},
		{
			name:       "rejects malformed XFF",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			trusted:    []string{"10.0.0.0/8"},
			want:       "10.0.0.1",
		},
		{
			name:       "strips IPv6 brackets",
			remoteAddr: "[::1]:8080",
			want:       "::1",
		},
		{
			name: "empty remote addr",
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prefixes []netip.Prefix
			for _, cidr := range tt.trusted {
				prefixes = append(prefixes, netip.MustParsePrefix(cidr))
			}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, New(prefixes).Resolve(req))
		})
	}
}

func TestHandler_StoresIPInContext(t *testing.T) {
	var got string
	h := New(nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.ClientIP(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "172.16.0.4:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "172.16.0.4", got)
}
