package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Поддерживаемые драйверы БД.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	// ErrNotFound возвращается, когда строка бота не найдена.
	ErrNotFound = errors.New("bot not found")
	// ErrExists возвращается при попытке вставить бота с уже занятым именем.
	ErrExists = errors.New("bot already exists")
)

func init() {
	// modernc регистрирует драйвер под именем "sqlite", которого нет в таблице sqlx.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type DB struct {
	Conn *sqlx.DB
	now  func() time.Time
}

// NewDB оборачивает уже открытое соединение. driver нужен sqlx для выбора плейсхолдеров.
func NewDB(conn *sql.DB, driver string) *DB {
	return &DB{Conn: sqlx.NewDb(conn, driver), now: time.Now}
}

// Open открывает БД и проверяет соединение.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", driver)
	}
	if driver == DriverSQLite {
		// Каждое соединение к :memory: видит свою собственную базу.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "ping %s", driver)
	}
	log.Printf("[DB INFO] Подключение к %s установлено", driver)
	return &DB{Conn: conn, now: time.Now}, nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}

var schema = map[string]string{
	DriverPostgres: `
              CREATE TABLE IF NOT EXISTS bot_users (
                     bot_id       BIGSERIAL PRIMARY KEY,
                     bot_name     TEXT NOT NULL UNIQUE,
                     bot_password TEXT NOT NULL DEFAULT '',
                     bot_hash     TEXT NOT NULL DEFAULT '',
                     bot_cookie   TEXT NOT NULL DEFAULT '',
                     bot_data     TEXT NOT NULL DEFAULT '',
                     bot_callback TEXT NOT NULL DEFAULT '',
                     bot_enabled  BOOLEAN NOT NULL DEFAULT FALSE,
                     bot_created  BIGINT NOT NULL DEFAULT 0,
                     bot_updated  BIGINT NOT NULL DEFAULT 0
              )`,
	DriverSQLite: `
              CREATE TABLE IF NOT EXISTS bot_users (
                     bot_id       INTEGER PRIMARY KEY AUTOINCREMENT,
                     bot_name     TEXT NOT NULL UNIQUE,
                     bot_password TEXT NOT NULL DEFAULT '',
                     bot_hash     TEXT NOT NULL DEFAULT '',
                     bot_cookie   TEXT NOT NULL DEFAULT '',
                     bot_data     TEXT NOT NULL DEFAULT '',
                     bot_callback TEXT NOT NULL DEFAULT '',
                     bot_enabled  BOOLEAN NOT NULL DEFAULT 0,
                     bot_created  INTEGER NOT NULL DEFAULT 0,
                     bot_updated  INTEGER NOT NULL DEFAULT 0
              )`,
}

// Migrate создаёт таблицу bot_users, если её ещё нет.
func (db *DB) Migrate(ctx context.Context) error {
	ddl, ok := schema[db.Conn.DriverName()]
	if !ok {
		return errors.Errorf("no schema for driver %q", db.Conn.DriverName())
	}
	if _, err := db.Conn.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "create bot_users")
	}
	log.Printf("[DB INFO] Таблица bot_users готова")
	return nil
}
