package bot_mutex

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockBot(t *testing.T) {
	require.NoError(t, LockBot("alice"))

	err := LockBot("alice")
	assert.True(t, errors.Is(err, ErrBusy))

	require.NoError(t, LockBot("bob"), "другой бот не блокируется")

	UnlockBot("alice")
	require.NoError(t, LockBot("alice"))

	UnlockBot("alice")
	UnlockBot("bob")
	UnlockBot("nobody")
}
