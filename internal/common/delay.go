package common

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// waitStep — шаг ожидания; между шагами проверяется отмена контекста.
var waitStep = 5 * time.Second

// WaitWithCancellation ждёт случайное число секунд из диапазона [min, max]
// и прерывается при отмене контекста.
func WaitWithCancellation(ctx context.Context, delayRange [2]int) error {
	if delayRange[0] < 0 || delayRange[1] < delayRange[0] {
		return errors.Errorf("invalid delay range %v", delayRange)
	}
	delay := time.Duration(rand.Intn(delayRange[1]-delayRange[0]+1)+delayRange[0]) * time.Second
	for remaining := delay; remaining > 0; {
		step := waitStep
		if remaining < step {
			step = remaining
		}
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		remaining -= step
	}
	return ctx.Err()
}
