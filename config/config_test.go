package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, args ...string) *Loader {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	l := NewLoader(flags)
	require.NoError(t, flags.Parse(args))
	return l
}

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := newTestLoader(t).Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "reddit_session", cfg.Reddit.CookieName)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rdt.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
db:
  driver: sqlite
  dsn: file.db
reddit:
  base_url: https://old.reddit.com
  timeout_seconds: 5
server:
  port: 9000
`), 0o600))

	t.Setenv("RDT_SERVER_PORT", "9100")
	t.Setenv("RDT_REDDIT_TIMEOUT_SECONDS", "7")

	cfg, err := newTestLoader(t, "--config-file", file, "--server-port", "9200").Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver, "из файла")
	assert.Equal(t, "file.db", cfg.DB.DSN)
	assert.Equal(t, "https://old.reddit.com", cfg.Reddit.BaseURL)
	assert.Equal(t, 7, cfg.Reddit.TimeoutSeconds, "окружение перекрывает файл")
	assert.Equal(t, 9200, cfg.Server.Port, "флаг перекрывает окружение")
}

func TestValidation(t *testing.T) {
	cfg := Default()
	cfg.DB.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DB.Driver = DriverMemory
	cfg.DB.DSN = ""
	assert.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.Reddit.Proxy.IP = "127.0.0.1"
	assert.Error(t, cfg.Validate(), "прокси без порта")

	cfg = Default()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestPrintableHidesSecrets(t *testing.T) {
	cfg := Default()
	cfg.Server.Token = "secret-token"
	cfg.Reddit.Proxy.Password = "proxy-pass"
	out, err := cfg.Printable()
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, "secret-token"))
	assert.False(t, strings.Contains(out, "proxy-pass"))
	assert.False(t, strings.Contains(out, "postgres:postgres@"), "пароль в DSN скрыт")
}

func TestTransportConfig(t *testing.T) {
	rc := Default().Reddit
	assert.Nil(t, rc.TransportConfig().Proxy)

	rc.Proxy = ProxyConfig{IP: "10.0.0.1", Port: 1080}
	tc := rc.TransportConfig()
	require.NotNil(t, tc.Proxy)
	assert.Equal(t, "10.0.0.1:1080", tc.Proxy.Addr())
	assert.Equal(t, 30, int(tc.Timeout.Seconds()))
}
