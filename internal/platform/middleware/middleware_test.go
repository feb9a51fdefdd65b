package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func setupRouter(log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logging(log, "/healthz"))
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

// TestRequestID はリクエストIDの生成と引き継ぎを検証します。
func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generated when absent"},
		{name: "incoming header kept", incoming: "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := setupRouter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, got)
			} else {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			}

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, got, body["request_id"])
		})
	}
}

// TestLogging はステータスコードに応じたログレベルとスキップパスを検証します。
func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path      string
		wantLevel string
		wantLog   bool
	}{
		{path: "/ok", wantLevel: "INFO", wantLog: true},
		{path: "/missing", wantLevel: "WARN", wantLog: true},
		{path: "/boom", wantLevel: "ERROR", wantLog: true},
		{path: "/healthz", wantLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			r := setupRouter(slog.New(slog.NewJSONHandler(&buf, nil)))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path+"?q=eur", nil))

			if !tt.wantLog {
				assert.Zero(t, buf.Len())
				return
			}

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, tt.path+"?q=eur", entry["path"])
			assert.Equal(t, w.Header().Get(RequestIDHeader), entry["request_id"])
		})
	}
}
