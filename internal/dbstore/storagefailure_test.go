package dbstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorageFailureUnwrapsAndCapturesStack(t *testing.T) {
	underlying := errors.New("disk full")
	f := newStorageFailure("update", underlying)

	require.ErrorIs(t, f, underlying)
	require.Contains(t, f.Error(), "disk full")
	require.Contains(t, f.Error(), "update")
	require.NotEmpty(t, f.Stack())
}
