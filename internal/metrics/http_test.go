package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider := newTestProvider(t, "http_test")

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "http_test"))
	router.GET("/v1/records/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.POST("/v1/crypto/encrypt", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_error"})
	})

	for _, path := range []string{"/v1/records/a", "/v1/records/b"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/crypto/encrypt", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	output := scrape(t, provider)
	assertMetricLine(t, output, `http_test_http_requests_total`,
		`method="GET".*path="/v1/records/:id".*status_code="200"`, `2`)
	assertMetricLine(t, output, `http_test_http_requests_total`,
		`method="POST".*path="/v1/crypto/encrypt".*status_code="422"`, `1`)
	assertMetricLine(t, output, `http_test_http_requests_total`,
		`path="unknown".*status_code="404"`, `1`)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/v1/records/:id", routeLabel("/v1/records/:id"))
	assert.Equal(t, "unknown", routeLabel(""))
}
