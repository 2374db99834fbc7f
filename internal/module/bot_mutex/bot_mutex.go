package bot_mutex

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrBusy — бот уже занят другой операцией.
var ErrBusy = errors.New("bot is busy")

var (
	globalMu sync.Mutex
	botLocks = make(map[string]*sync.Mutex)
)

// LockBot пытается захватить мьютекс бота. Ожидания нет: занятый бот сразу
// даёт ErrBusy, так как один Bot не рассчитан на параллельные вызовы.
func LockBot(key string) error {
	globalMu.Lock()
	lock, ok := botLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		botLocks[key] = lock
	}
	globalMu.Unlock()

	if !lock.TryLock() {
		log.Printf("[MUTEX] бот %s занят", key)
		return errors.Wrapf(ErrBusy, "bot %s", key)
	}

	log.Debugf("[MUTEX] бот %s заблокирован", key)
	return nil
}

// UnlockBot освобождает мьютекс бота.
func UnlockBot(key string) {
	globalMu.Lock()
	lock := botLocks[key]
	globalMu.Unlock()
	if lock != nil {
		lock.Unlock()
		log.Debugf("[MUTEX] бот %s разблокирован", key)
	}
}
