package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{in: "599.99", want: 59999},
		{in: "600", want: 60000},
		{in: "0", want: 0},
		{in: "0.5", want: 50},
		{in: "", wantErr: e.ErrInvalidPrice},
		{in: "abc", wantErr: e.ErrInvalidPrice},
		{in: "-10", wantErr: e.ErrInvalidPrice},
		{in: "1.999", wantErr: e.ErrPricePrecision},
		{in: "100000000001", wantErr: e.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePriceToCents(tt.in)
			if tt.wantErr != nil {
				if tt.in == "" {
					assert.Error(t, err)
					return
				}
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{err: e.ErrMissingUserID, code: http.StatusBadRequest},
		{err: e.ErrNothingToUndo, code: http.StatusBadRequest},
		{err: e.ErrInsufficientLikedItems, code: http.StatusBadRequest},
		{err: e.ErrNoMoreItems, code: http.StatusNotFound},
		{err: e.ErrUnknownItem, code: http.StatusNotFound},
		{err: e.ErrEmptyVector, code: http.StatusNotFound},
		{err: e.ErrVectorSearchDisabled, code: http.StatusServiceUnavailable},
		{err: fmt.Errorf("pg: connection refused"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, _ := ToHTTPResponse(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestToHTTPResponseUnwrapsOp(t *testing.T) {
	code, msg := ToHTTPResponse(e.Wrap("FeedUseCase.Like", e.ErrUnknownItem))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, e.ErrUnknownItem.Error(), msg)
}

func TestUserIDFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/feed/next", nil)
	r.Header.Set("X-User-ID", "  u1  ")

	userID, err := userIDFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	r.Header.Del("X-User-ID")
	_, err = userIDFromRequest(r)
	assert.ErrorIs(t, err, e.ErrMissingUserID)
}
