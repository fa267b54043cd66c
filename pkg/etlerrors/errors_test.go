package etlerrors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndError(t *testing.T) {
	err := New(ErrorTypeNullConstraint, "order_id contains nulls")
	assert.Equal(t, "null_constraint: order_id contains nulls", err.Error())
	assert.NotEmpty(t, err.Stack)
	assert.Nil(t, err.Unwrap())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeRangeValidation, "rating out of range: %v", 7.0)
	assert.Equal(t, ErrorTypeRangeValidation, err.Type)
	assert.Contains(t, err.Message, "7")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := Wrap(cause, ErrorTypeFile, "failed to read source file")
	require.NotNil(t, err)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "unexpected EOF")
	assert.Equal(t, ErrorTypeFile, TypeOf(err))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeFile, "ignored"))
}

func TestWrapKeepsOriginalStack(t *testing.T) {
	inner := New(ErrorTypeData, "bad row")
	outer := Wrap(inner, ErrorTypeInternal, "stage failed")
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, IsType(outer.Unwrap(), ErrorTypeData))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeMissingColumns, "missing required columns").
		WithDetail("missing_columns", []string{"status", "total_amount"}).
		WithDetail("available_columns", []string{"order_id"})

	assert.Equal(t, []string{"status", "total_amount"}, err.Detail("missing_columns"))
	assert.Nil(t, err.Detail("absent_key"))
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeDuplicateKey, "duplicate order ids")
	assert.True(t, IsType(err, ErrorTypeDuplicateKey))
	assert.False(t, IsType(err, ErrorTypeConfig))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeDuplicateKey))
	assert.False(t, IsType(nil, ErrorTypeDuplicateKey))
}

func TestIsTypeSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrorTypeTypeMismatch, "int where float expected"))
	assert.True(t, IsType(err, ErrorTypeTypeMismatch))
	assert.Equal(t, ErrorTypeTypeMismatch, TypeOf(err))
}

func TestTypeOfForeignError(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, TypeOf(errors.New("plain")))
}
