package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExchangeErrorUnwrap(t *testing.T) {
	err := New("binance", http.StatusBadRequest, "-2010", "Account has insufficient balance", ErrInsufficientFunds)
	wrapped := fmt.Errorf("create order: %w", err)

	assert.ErrorIs(t, wrapped, ErrInsufficientFunds)
	assert.NotErrorIs(t, wrapped, ErrOrderNotFound)

	var exErr *ExchangeError
	assert.True(t, errors.As(wrapped, &exErr))
	assert.Equal(t, "-2010", exErr.Code)
	assert.Contains(t, err.Error(), "code=-2010")
}

func TestFromHTTPStatus(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:        ErrAuthentication,
		http.StatusForbidden:           ErrPermissionDenied,
		http.StatusBadRequest:          ErrBadRequest,
		http.StatusNotFound:            ErrBadRequest,
		http.StatusTooManyRequests:     ErrRateLimitExceeded,
		http.StatusTeapot:              ErrRateLimitExceeded,
		http.StatusBadGateway:          ErrExchangeNotAvailable,
		http.StatusServiceUnavailable:  ErrExchangeNotAvailable,
		http.StatusUnprocessableEntity: ErrExchange,
	}
	for status, want := range cases {
		assert.ErrorIs(t, New("okx", status, "", "", nil), want, "status %d", status)
	}
}

func TestCodeMapLookup(t *testing.T) {
	m := CodeMap{"51008": ErrInsufficientFunds}
	assert.Equal(t, ErrInsufficientFunds, m.Lookup("51008"))
	assert.Nil(t, m.Lookup("0"))
	assert.Nil(t, CodeMap(nil).Lookup("1"))
}
