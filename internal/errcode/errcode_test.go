package errcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New("yield", "invalid", "no such thread")
	require.EqualError(t, err, "yield: no such thread")
}

func TestWrapNilIsNil(t *testing.T) {
	require.Nil(t, Wrap("read_block", "io", nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk error")
	err := Wrap("read_block", "io", cause)
	require.ErrorIs(t, err, cause)
}

func TestHasCode(t *testing.T) {
	err := New("create", "no_more_ids", "id table full")
	require.True(t, HasCode(err, "no_more_ids"))
	require.False(t, HasCode(err, "invalid"))
	require.False(t, HasCode(errors.New("plain"), "invalid"))
}
