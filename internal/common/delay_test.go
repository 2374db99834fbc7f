package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitWithCancellation(t *testing.T) {
	assert.NoError(t, WaitWithCancellation(context.Background(), [2]int{0, 0}))
	assert.Error(t, WaitWithCancellation(context.Background(), [2]int{3, 1}))
	assert.Error(t, WaitWithCancellation(context.Background(), [2]int{-1, 1}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	err := WaitWithCancellation(ctx, [2]int{60, 60})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
}
