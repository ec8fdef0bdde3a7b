package shared

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

func TestFormParserBlankFieldsAreZero(t *testing.T) {
	var p FormParser
	require.Zero(t, p.Int("Quantity", ""))
	require.Zero(t, p.Float("Unit price", " "))
	require.Zero(t, p.ID("Category", ""))
	require.True(t, p.Date("Order date", "2006-01-02", "").IsZero())
	require.NoError(t, p.Err())
}

func TestFormParserParsesValidValues(t *testing.T) {
	var p FormParser
	require.Equal(t, 12, p.Int("Quantity", " 12 "))
	require.Equal(t, 9.99, p.Float("Unit price", "9.99"))
	require.Equal(t, int64(3), p.ID("Category", "3"))
	require.Equal(t, "2026-08-29", p.Date("Order date", "2006-01-02", "2026-08-29").Format("2006-01-02"))
	require.NoError(t, p.Err())
}

func TestFormParserRejectsGarbage(t *testing.T) {
	var p FormParser
	require.Zero(t, p.Int("Quantity", "1O"))
	require.Zero(t, p.Float("Unit price", "nine"))
	require.Zero(t, p.ID("Category", "x"))
	require.True(t, p.Date("Order date", "2006-01-02", "29/08/2026").IsZero())

	err := p.Err()
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "Quantity must be a whole number")
	require.Contains(t, err.Error(), "Unit price must be a number")
	require.Contains(t, err.Error(), "Category is not a valid choice")
	require.Contains(t, err.Error(), "Order date must be a valid date")
}
