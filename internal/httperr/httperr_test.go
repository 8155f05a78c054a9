package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromDB(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind Kind
		code string
	}{
		{"no rows", pgx.ErrNoRows, KindNotFound, "booking_not_found"},
		{"gorm not found", gorm.ErrRecordNotFound, KindNotFound, "booking_not_found"},
		{"exclusion", &pgconn.PgError{Code: "23P01"}, KindConflict, CodeConflict},
		{"unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), KindConflict, CodeConflict},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, KindTimeout, CodeTimeout},
		{"statement timeout", &pgconn.PgError{Code: "57014"}, KindTimeout, CodeTimeout},
		{"deadline", context.DeadlineExceeded, KindTimeout, CodeTimeout},
		{"other", errors.New("connection refused"), KindStorage, CodeStorage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := FromDB(tc.err, "booking_not_found")
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, tc.code, CodeOf(err))
		})
	}

	assert.NoError(t, FromDB(nil, "x"))

	biz := InvalidState(CodeInvalidState)
	assert.Same(t, biz, FromDB(biz, "x"))
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("disk")
	err := Storage(cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindStorage))
	assert.Nil(t, Storage(nil))
}

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		body   string
	}{
		{Validation("PAST"), http.StatusUnprocessableEntity, `"error_code":"PAST"`},
		{Conflict(CodeConflict), http.StatusConflict, `"error_code":"CONFLICT"`},
		{InvalidState(CodeInvalidState), http.StatusConflict, `"error_code":"INVALID_STATE"`},
		{NotFound("booking_not_found"), http.StatusNotFound, `"error_code":"booking_not_found"`},
		{Timeout(CodeTimeout), http.StatusServiceUnavailable, `"error_code":"TIMEOUT"`},
		{Storage(errors.New("pq: secret detail")), http.StatusInternalServerError, `"error_code":"internal_error"`},
		{errors.New("boom"), http.StatusInternalServerError, `"error_code":"internal_error"`},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		FromError(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		assert.Contains(t, w.Body.String(), tc.body)
		assert.NotContains(t, w.Body.String(), "secret detail")
	}
}
