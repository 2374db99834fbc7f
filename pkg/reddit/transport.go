package reddit

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"

	"rdt_go/models"
)

// Transport выполняет один HTTP-вызов к API и возвращает сырое тело ответа.
// form == nil означает GET без тела, иначе POST с формой.
type Transport interface {
	Do(ctx context.Context, path string, form *Form, cookie string) (string, error)
}

const (
	DefaultBaseURL    = "https://www.reddit.com"
	DefaultCookieName = "reddit_session"
	DefaultUserAgent  = "rdt_go/1.0"
)

type TransportConfig struct {
	BaseURL    string
	UserAgent  string
	CookieName string
	Timeout    time.Duration
	Proxy      *models.Proxy
}

// HTTPTransport — Transport поверх resty.
type HTTPTransport struct {
	client     *resty.Client
	cookieName string
}

func NewHTTPTransport(cfg TransportConfig) (*HTTPTransport, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("User-Agent", cfg.UserAgent).
		// Транспорт общий для всех ботов: куки передаются только явным заголовком.
		SetCookieJar(nil)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	if cfg.Proxy != nil && cfg.Proxy.IP != "" {
		dialer, err := socks5Dialer(*cfg.Proxy)
		if err != nil {
			return nil, err
		}
		client.SetTransport(&http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		})
	}

	return &HTTPTransport{client: client, cookieName: cfg.CookieName}, nil
}

// socks5Dialer создаёт SOCKS5-дайлер с авторизацией, если указан логин или пароль.
func socks5Dialer(p models.Proxy) (proxy.ContextDialer, error) {
	var auth *proxy.Auth
	if p.Login != "" || p.Password != "" {
		auth = &proxy.Auth{User: p.Login, Password: p.Password}
	}
	d, err := proxy.SOCKS5("tcp", p.Addr(), auth, proxy.Direct)
	if err != nil {
		return nil, errors.Wrap(err, "proxy dialer")
	}
	dc, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("proxy dialer missing context")
	}
	log.Printf("[PROXY] Запросы пойдут через %s", p.Addr())
	return dc, nil
}

// endpoint превращает путь вида "r/anime?limit=5" в "/r/anime.json?limit=5".
func endpoint(path string) string {
	path = strings.TrimPrefix(path, "/")
	query := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i:]
	}
	return "/" + path + ".json" + query
}

func (t *HTTPTransport) Do(ctx context.Context, path string, form *Form, cookie string) (string, error) {
	req := t.client.R().SetContext(ctx)
	if cookie != "" {
		// Заголовок пишется как есть: http.Cookie вырезает запятые из значения.
		req.SetHeader("Cookie", t.cookieName+"="+cookie)
	}

	target := endpoint(path)
	method := http.MethodGet
	if form != nil {
		method = http.MethodPost
		req.SetHeader("Content-Type", "application/x-www-form-urlencoded").
			SetBody(form.Encode())
	}

	resp, err := req.Execute(method, target)
	if err != nil {
		return "", errors.Wrapf(err, "%s %s", method, target)
	}
	log.Debugf("[HTTP] %s %s -> %d", method, target, resp.StatusCode())
	// resp.String() обрезает пробелы, а успех голоса проверяется по точному телу.
	return string(resp.Body()), nil
}

// pathEscape экранирует сегмент пути (имя пользователя в api/login/<name>).
func pathEscape(s string) string {
	return url.PathEscape(s)
}
