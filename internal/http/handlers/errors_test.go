package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"railway/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid credentials"},
		{"journey date", domain.InvalidJourneyDate(120), http.StatusBadRequest, "invalid_journey_date", ""},
		{"route", domain.RouteNotFound("12951", "BCT", "NDLS"), http.StatusNotFound, "route_not_found", ""},
		{"quota", domain.QuotaExceeded(10, 10), http.StatusConflict, "quota_exceeded", ""},
		{"wrapped", fmt.Errorf("cancel: %w", domain.AlreadyCancelled("PNR1")), http.StatusConflict, "already_cancelled", ""},
		{"internal", domain.InternalError{Msg: "failed to render e-ticket", Err: errors.New("font missing")}, http.StatusInternalServerError, "internal_error", "failed to render e-ticket"},
		{"driver", errors.New("Error 1213: Deadlock found"), http.StatusInternalServerError, "internal_error", "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			RespondDomainError(c, tc.err)

			if w.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, w.Code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, body.Code)
			}
			if tc.msg != "" && body.Error != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, body.Error)
			}
		})
	}
}
