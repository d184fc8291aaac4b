package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORS([]string{"https://app.gestihotel.test/"}))
	r.GET("/api/v1/sync/status", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{name: "known origin", method: http.MethodGet, origin: "https://app.gestihotel.test", wantStatus: http.StatusOK, wantOrigin: "https://app.gestihotel.test"},
		{name: "foreign origin", method: http.MethodGet, origin: "https://evil.test", wantStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "https://app.gestihotel.test", wantStatus: http.StatusNoContent, wantOrigin: "https://app.gestihotel.test"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/v1/sync/status", nil)
			req.Header.Set("Origin", tc.origin)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("expected allow-origin %q, got %q", tc.wantOrigin, got)
			}
			if !strings.Contains(rr.Header().Get("Access-Control-Expose-Headers"), "Retry-After") {
				t.Fatalf("expected Retry-After to be exposed")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = requestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if seen != "req-42" || rr.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected caller id to propagate, got ctx=%q header=%q", seen, rr.Header().Get(requestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "bad id\n")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if seen == "bad id\n" || len(seen) != 26 {
		t.Fatalf("expected a generated ULID, got %q", seen)
	}
}

func TestAccessLevel(t *testing.T) {
	cases := []struct {
		route  string
		status int
		want   string
	}{
		{route: "/api/v1/sync", status: http.StatusBadGateway, want: "error"},
		{route: "/api/v1/establishments/switch", status: http.StatusConflict, want: "warn"},
		{route: "/healthz", status: http.StatusOK, want: "debug"},
		{route: "/api/v1/interventions", status: http.StatusOK, want: "info"},
	}
	for _, tc := range cases {
		if got := accessLevel(tc.route, tc.status).String(); got != tc.want {
			t.Fatalf("accessLevel(%q, %d) = %s, want %s", tc.route, tc.status, got, tc.want)
		}
	}
}
