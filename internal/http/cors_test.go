package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateCORSMiddleware_Disabled(t *testing.T) {
	middleware := createCORSMiddleware(false, "tauri://localhost", discardLogger())
	assert.Nil(t, middleware)
}

func TestCreateCORSMiddleware_NoOrigins(t *testing.T) {
	middleware := createCORSMiddleware(true, "", discardLogger())
	assert.Nil(t, middleware)
}

func TestCreateCORSMiddleware_AllowsConfiguredOrigin(t *testing.T) {
	middleware := createCORSMiddleware(true, "tauri://localhost", discardLogger())
	assert.NotNil(t, middleware)

	router := gin.New()
	router.Use(middleware)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "tauri://localhost")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tauri://localhost", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "tauri://localhost", []string{"tauri://localhost"}},
		{"multiple with spaces", "tauri://localhost, http://localhost:1420", []string{"tauri://localhost", "http://localhost:1420"}},
		{"trailing comma", "tauri://localhost,", []string{"tauri://localhost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOrigins(tt.input)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
