package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "postgres unique violation",
			err:  errors.New(`ERROR: duplicate key value violates unique constraint "results_position_no_dupes" (SQLSTATE=23505)`),
			want: true,
		},
		{
			name: "sqlite unique violation",
			err:  errors.New("constraint failed: UNIQUE constraint failed: results.competition_id, results.position (2067)"),
			want: true,
		},
		{
			name: "wrapped violation",
			err:  fmt.Errorf("insert result: %w", errors.New("duplicate key value violates unique constraint")),
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}

// A placement that passes validation can still lose the insert race to a
// concurrent writer; the unique constraints are the authoritative guard and
// their violation must surface as 409, not 500.
func TestResultErrorMapsUniqueRaceToConflict(t *testing.T) {
	err := resultError(fmt.Errorf("insert result: %w",
		errors.New(`ERROR: duplicate key value violates unique constraint "results_horse_no_dupes"`)))

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusConflict, he.Code)
	assert.Equal(t, "a conflicting result was recorded concurrently", he.Message)
}

func TestResultErrorPassesThroughHTTPErrors(t *testing.T) {
	original := echo.NewHTTPError(http.StatusBadRequest, "competition not found")

	err := resultError(fmt.Errorf("check result: %w", original))

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, "competition not found", he.Message)
}

func TestResultErrorDefaultsToInternal(t *testing.T) {
	err := resultError(errors.New("connection refused"))

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}
