package cmd

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"rdt_go/config"
	botapi "rdt_go/internal/bot"
	"rdt_go/internal/callbacks"
	"rdt_go/internal/metrics"
	"rdt_go/pkg/reddit"
	"rdt_go/pkg/storage"
)

// openStore открывает хранилище по db.driver. Вызывающий закрывает его через closer.
func openStore(ctx context.Context) (botapi.Store, func(), error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warnf("[DB WARN] Хранилище в памяти: данные пропадут при выходе")
		return storage.NewMemoryStore(), func() {}, nil
	}
	db, err := storage.Open(ctx, cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.Printf("[DB ERROR] Ошибка закрытия БД: %v", err)
		}
	}, nil
}

func newTransport() (reddit.Transport, error) {
	t, err := reddit.NewHTTPTransport(cfg.Reddit.TransportConfig())
	if err != nil {
		return nil, errors.Wrap(err, "create transport")
	}
	return t, nil
}

func botOptions() []reddit.Option {
	return []reddit.Option{
		reddit.WithCallbacks(callbacks.Default()),
		reddit.WithObserver(metrics.Observe),
	}
}
