package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"rdt_go/models"
)

const botUserColumns = `bot_id, bot_name, bot_password, bot_hash, bot_cookie, bot_data, bot_callback, bot_enabled, bot_created, bot_updated`

// botUserRow повторяет строку bot_users; время хранится в unix-секундах.
type botUserRow struct {
	ID       int64  `db:"bot_id"`
	Name     string `db:"bot_name"`
	Password string `db:"bot_password"`
	Hash     string `db:"bot_hash"`
	Cookie   string `db:"bot_cookie"`
	Data     string `db:"bot_data"`
	Callback string `db:"bot_callback"`
	Enabled  bool   `db:"bot_enabled"`
	Created  int64  `db:"bot_created"`
	Updated  int64  `db:"bot_updated"`
}

func (r botUserRow) toModel() *models.BotSession {
	return &models.BotSession{
		ID:            r.ID,
		UserName:      r.Name,
		Password:      r.Password,
		SessionHash:   r.Hash,
		SessionCookie: r.Cookie,
		Data:          r.Data,
		Callback:      r.Callback,
		Enabled:       r.Enabled,
		CreatedAt:     time.Unix(r.Created, 0),
		LastUpdated:   time.Unix(r.Updated, 0),
	}
}

// FindByID загружает бота по идентификатору строки.
func (db *DB) FindByID(ctx context.Context, id int64) (*models.BotSession, error) {
	return db.findOne(ctx, "bot_id = ?", id)
}

// FindByUserName загружает бота по имени пользователя.
func (db *DB) FindByUserName(ctx context.Context, name string) (*models.BotSession, error) {
	return db.findOne(ctx, "bot_name = ?", name)
}

func (db *DB) findOne(ctx context.Context, where string, arg interface{}) (*models.BotSession, error) {
	query := db.Conn.Rebind(`SELECT ` + botUserColumns + ` FROM bot_users WHERE ` + where + ` LIMIT 1`)

	var row botUserRow
	if err := db.Conn.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Printf("[DB ERROR] Ошибка чтения bot_users: %v", err)
		return nil, errors.Wrap(err, "select bot_users")
	}
	return row.toModel(), nil
}

// Exists проверяет, есть ли строка с таким именем.
func (db *DB) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	query := db.Conn.Rebind(`SELECT COUNT(1) FROM bot_users WHERE bot_name = ?`)
	if err := db.Conn.GetContext(ctx, &n, query, name); err != nil {
		return false, errors.Wrap(err, "count bot_users")
	}
	return n > 0, nil
}

// Update записывает токены и данные бота и обновляет bot_updated.
// Возвращает число затронутых строк.
func (db *DB) Update(ctx context.Context, name, hash, cookie, data string) (int64, error) {
	query := db.Conn.Rebind(`
              UPDATE bot_users
              SET bot_updated = ?, bot_hash = ?, bot_cookie = ?, bot_data = ?
              WHERE bot_name = ?
       `)
	res, err := db.Conn.ExecContext(ctx, query, db.now().Unix(), hash, cookie, data, name)
	if err != nil {
		log.Printf("[DB ERROR] Не удалось обновить бота %s: %v", name, err)
		return 0, errors.Wrap(err, "update bot_users")
	}
	return res.RowsAffected()
}

// Insert создаёт строку бота. Новые боты всегда выключены, пока их не включат вручную.
func (db *DB) Insert(ctx context.Context, name, password, hash, cookie string, enabled bool) (int64, error) {
	now := db.now().Unix()
	query := db.Conn.Rebind(`
              INSERT INTO bot_users (bot_created, bot_updated, bot_name, bot_password, bot_cookie, bot_hash, bot_enabled)
              VALUES (?, ?, ?, ?, ?, ?, ?)
       `)
	res, err := db.Conn.ExecContext(ctx, query, now, now, name, password, cookie, hash, enabled)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrExists
		}
		log.Printf("[DB ERROR] Не удалось создать бота %s: %v", name, err)
		return 0, errors.Wrap(err, "insert bot_users")
	}
	log.Printf("[DB INFO] Бот %s создан", name)
	return res.RowsAffected()
}

// SetCallback привязывает к боту имя функции Run.
func (db *DB) SetCallback(ctx context.Context, name, callback string) error {
	query := db.Conn.Rebind(`UPDATE bot_users SET bot_callback = ? WHERE bot_name = ?`)
	res, err := db.Conn.ExecContext(ctx, query, callback, name)
	if err != nil {
		return errors.Wrap(err, "update bot_callback")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count возвращает количество строк в bot_users.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.Conn.GetContext(ctx, &n, `SELECT COUNT(1) FROM bot_users`); err != nil {
		return 0, errors.Wrap(err, "count bot_users")
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
