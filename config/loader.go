package config

import (
	"encoding/json"
	"net/url"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix — префикс переменных окружения.
const EnvPrefix = "RDT_"

type configKey []string

func (c configKey) EnvName() string {
	return EnvPrefix + strings.ReplaceAll(strings.ToUpper(c.FlagName()), "-", "_")
}

func (c configKey) AccessPath() string {
	return strings.ReplaceAll(strings.Join(c, "."), "-", "_")
}

func (c configKey) FlagName() string {
	return strings.Join(c, "-")
}

// Loader собирает Config из значений по умолчанию, YAML-файла, окружения и флагов.
// Приоритет: флаги > окружение > файл > значения по умолчанию.
type Loader struct {
	v     *viper.Viper
	flags *pflag.FlagSet
}

// NewLoader регистрирует все ключи конфигурации как флаги в flags.
func NewLoader(flags *pflag.FlagSet) *Loader {
	l := &Loader{v: viper.New(), flags: flags}
	l.v.SetTypeByDefaultValue(true)

	d := Default()
	name := func(components ...string) configKey { return components }

	l.registerString(name("config-file"), d.ConfigFile, "location of config file")

	l.registerString(name("log", "level"), d.Log.Level, "log level [trace, debug, info, warn, error, fatal]")
	l.registerBool(name("log", "json"), d.Log.JSON, "output logs as JSON")

	l.registerString(name("db", "driver"), d.DB.Driver, "database driver [postgres, sqlite, memory]")
	l.registerString(name("db", "dsn"), d.DB.DSN, "database connection string")

	l.registerString(name("reddit", "base-url"), d.Reddit.BaseURL, "platform API base URL")
	l.registerString(name("reddit", "user-agent"), d.Reddit.UserAgent, "User-Agent header")
	l.registerString(name("reddit", "cookie-name"), d.Reddit.CookieName, "session cookie name")
	l.registerInt(name("reddit", "timeout-seconds"), d.Reddit.TimeoutSeconds, "HTTP timeout in seconds, 0 disables it")
	l.registerString(name("reddit", "proxy", "ip"), d.Reddit.Proxy.IP, "SOCKS5 proxy host")
	l.registerInt(name("reddit", "proxy", "port"), d.Reddit.Proxy.Port, "SOCKS5 proxy port")
	l.registerString(name("reddit", "proxy", "login"), d.Reddit.Proxy.Login, "SOCKS5 proxy login")
	l.registerString(name("reddit", "proxy", "password"), d.Reddit.Proxy.Password, "SOCKS5 proxy password")

	l.registerInt(name("server", "port"), d.Server.Port, "control API port")
	l.registerString(name("server", "token"), d.Server.Token, "control API bearer token, empty disables auth")

	return l
}

func (l *Loader) registerString(name configKey, value string, usage string) {
	l.flags.String(name.FlagName(), value, usage)
	l.bind(name, value)
}

func (l *Loader) registerBool(name configKey, value bool, usage string) {
	l.flags.Bool(name.FlagName(), value, usage)
	l.bind(name, value)
}

func (l *Loader) registerInt(name configKey, value int, usage string) {
	l.flags.Int(name.FlagName(), value, usage)
	l.bind(name, value)
}

func (l *Loader) bind(name configKey, value interface{}) {
	_ = l.v.BindEnv(name.AccessPath(), name.EnvName())
	_ = l.v.BindPFlag(name.AccessPath(), l.flags.Lookup(name.FlagName()))
	l.v.SetDefault(name.AccessPath(), value)
}

// Load возвращает проверенную конфигурацию.
func (l *Loader) Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "error loading .env")
	}

	initial, err := l.decode()
	if err != nil {
		return nil, err
	}

	if initial.ConfigFile != "" {
		bs, err := os.ReadFile(initial.ConfigFile) // #nosec G304
		if err != nil {
			return nil, errors.Wrap(err, "error reading configuration file")
		}
		if err := l.MergeYAML(bs); err != nil {
			return nil, err
		}
	}

	config, err := l.decode()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}

// MergeYAML вливает содержимое YAML-файла в viper.
func (l *Loader) MergeYAML(bs []byte) error {
	var configMap map[string]interface{}
	if err := yaml.Unmarshal(bs, &configMap); err != nil {
		return errors.Wrap(err, "error unmarshal yaml configuration file")
	}
	if err := l.v.MergeConfigMap(configMap); err != nil {
		return errors.Wrap(err, "error merge configuration to viper")
	}
	return nil
}

func (l *Loader) decode() (*Config, error) {
	config := Default()
	bs, err := json.Marshal(l.v.AllSettings())
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal configuration map into json bytes")
	}
	if err := yaml.Unmarshal(bs, config); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal configuration")
	}
	return config, nil
}

// maskDSN прячет пароль в строке подключения для вывода в журнал.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "********")
	}
	return u.String()
}

// SetupLogging настраивает глобальный logrus.
func (c LogConfig) SetupLogging() error {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	log.SetLevel(level)
	if c.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
