package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
)

// botQueryDriver запоминает запросы и аргументы, чтобы проверить их вид
// для Postgres без настоящей БД.
type botQueryDriver struct{}

type botQueryConn struct{}

type botQueryResult struct{}

type botQueryCall struct {
	query string
	args  []driver.NamedValue
}

var botQueryCalls []botQueryCall

func (botQueryDriver) Open(name string) (driver.Conn, error) { return &botQueryConn{}, nil }

func (c *botQueryConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("not implemented")
}
func (c *botQueryConn) Close() error              { return nil }
func (c *botQueryConn) Begin() (driver.Tx, error) { return nil, errors.New("not implemented") }

func (c *botQueryConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	botQueryCalls = append(botQueryCalls, botQueryCall{query: query, args: args})
	return botQueryResult{}, nil
}

func (botQueryResult) LastInsertId() (int64, error) { return 0, nil }
func (botQueryResult) RowsAffected() (int64, error) { return 1, nil }

func init() { sql.Register("botQueryDummy", botQueryDriver{}) }

// TestPostgresPlaceholders проверяет, что запросы переписываются под $n
// и что новый бот вставляется выключенным.
func TestPostgresPlaceholders(t *testing.T) {
	botQueryCalls = nil
	conn, err := sql.Open("botQueryDummy", "")
	if err != nil {
		t.Fatalf("не удалось открыть мок БД: %v", err)
	}
	defer func() { _ = conn.Close() }()

	db := NewDB(conn, DriverPostgres)
	ctx := context.Background()

	if _, err := db.Update(ctx, "alice", "h1", "c1", "data"); err != nil {
		t.Fatalf("update завершился ошибкой: %v", err)
	}
	if _, err := db.Insert(ctx, "bob", "pw", "", "", false); err != nil {
		t.Fatalf("insert завершился ошибкой: %v", err)
	}

	if len(botQueryCalls) != 2 {
		t.Fatalf("ожидалось 2 запроса, получено %d", len(botQueryCalls))
	}
	for _, call := range botQueryCalls {
		if strings.Contains(call.query, "?") {
			t.Fatalf("в запросе остались плейсхолдеры ?: %s", call.query)
		}
	}
	if !strings.Contains(botQueryCalls[0].query, "WHERE bot_name = $5") {
		t.Fatalf("неожиданный запрос update: %s", botQueryCalls[0].query)
	}
	insert := botQueryCalls[1]
	if got := insert.args[len(insert.args)-1].Value; got != false {
		t.Fatalf("бот должен вставляться выключенным, получено %v", got)
	}
}
