package handlers

import (
	"context"
	"errors"
	"fmt"
	"meeting-point-service/internal/api/dto"
	"meeting-point-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestOriginInputPrecedence(t *testing.T) {
	in, err := originInput(dto.OriginRequest{Address: "1 Main St", PlaceID: " p1 ", Lat: ptr(1), Lng: ptr(2)})
	require.NoError(t, err)
	require.NotNil(t, in.Coordinates)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lon: 2}, *in.Coordinates)
	assert.Equal(t, "p1", in.PlaceID)
}

func TestOriginInputErrors(t *testing.T) {
	tests := []struct {
		name string
		in   dto.OriginRequest
	}{
		{"empty", dto.OriginRequest{Address: "  "}},
		{"lat only", dto.OriginRequest{Lat: ptr(1)}},
		{"out of range", dto.OriginRequest{Lat: ptr(91), Lng: ptr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := originInput(tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("find: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("find: %w", domain.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("find: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/meeting-places", nil)

			writeServiceError(rec, req, "find", tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestReady(t *testing.T) {
	rec := httptest.NewRecorder()
	h := &ReadyHandler{Check: func(context.Context) error { return errors.New("down") }}
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	(&ReadyHandler{}).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
