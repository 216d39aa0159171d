package helper_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/up-and-running/compose_able_go/shared/helper"
)

func TestGetTypedValueOf(t *testing.T) {
	v, err := helper.GetTypedValueOf[int](func() (any, error) { return 5, nil })
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = helper.GetTypedValueOf[int](func() (any, error) { return "five", nil })
	assert.Error(t, err)

	boom := errors.New("getter failed")
	_, err = helper.GetTypedValueOf[int](func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestMustGetTypedValue_PanicsOnMismatch(t *testing.T) {
	assert.Panics(t, func() {
		helper.MustGetTypedValue[int](func() (any, error) { return "oops", nil })
	})
}

func TestRetry_StopsOnFirstSuccess(t *testing.T) {
	calls := 0
	err := helper.Retry(5, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := helper.Retry(4, func() error {
		calls++
		return errors.New("always failing")
	})

	require.ErrorIs(t, err, helper.ErrMaxAttempts)
	assert.Equal(t, 4, calls)
}
