package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/shopspring/decimal"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
	}{
		{&market.InsufficientFundsError{UserID: 1, Balance: decimal.NewFromInt(1), Required: decimal.NewFromInt(2)}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", market.ErrAlreadyEnrolled), http.StatusBadRequest},
		{market.Invalid("title", "is required"), http.StatusBadRequest},
		{market.NewNotFound("course", 7), http.StatusNotFound},
		{market.ErrEmailTaken, http.StatusConflict},
		{&market.TransactionFailedError{Op: "purchase", Err: errors.New("disk full")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondError(c, tc.err)
		if w.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, w.Code)
		}
	}
}

func TestRespondErrorHidesStorageDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondError(c, &market.TransactionFailedError{Op: "purchase", Err: errors.New("pq: connection reset")})

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "transaction failed" {
		t.Fatalf("expected generic message, got %q", body["error"])
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if id := w.Header().Get(RequestIDHeader); id == "" || id != w.Body.String() {
		t.Fatalf("expected generated request id echoed, header=%q body=%q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "fixed-id" {
		t.Fatalf("expected incoming request id to be kept, got %q", w.Header().Get(RequestIDHeader))
	}
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", func(c *gin.Context) {
		c.Set(contextUserID, uint64(3))
		c.Set(contextIsAdmin, false)
		c.Next()
	}, RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
