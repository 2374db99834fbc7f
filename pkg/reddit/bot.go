package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"rdt_go/models"
	"rdt_go/pkg/storage"
)

// SessionStore — хранилище строк ботов. Реализации: storage.DB и storage.MemoryStore.
type SessionStore interface {
	FindByID(ctx context.Context, id int64) (*models.BotSession, error)
	FindByUserName(ctx context.Context, name string) (*models.BotSession, error)
	Exists(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, name, hash, cookie, data string) (int64, error)
	Insert(ctx context.Context, name, password, hash, cookie string, enabled bool) (int64, error)
}

// Ident указывает, как искать бота: по ID строки или по имени.
type Ident struct {
	id   int64
	name string
	byID bool
}

func ByID(id int64) Ident          { return Ident{id: id, byID: true} }
func ByUserName(name string) Ident { return Ident{name: name} }

func (i Ident) String() string {
	if i.byID {
		return "id:" + strconv.FormatInt(i.id, 10)
	}
	return i.name
}

func (i Ident) load(ctx context.Context, store SessionStore) (*models.BotSession, error) {
	if i.byID {
		return store.FindByID(ctx, i.id)
	}
	if i.name == "" {
		return nil, storage.ErrNotFound
	}
	return store.FindByUserName(ctx, i.name)
}

// RunFunc — пользовательское поведение бота, вызываемое через Run.
type RunFunc func(ctx context.Context, b *Bot) (interface{}, error)

// Callbacks сопоставляет имя из колонки bot_callback с функцией.
type Callbacks map[string]RunFunc

type Option func(*Bot)

// WithCallbacks задаёт реестр, по которому разрешается bot_callback.
func WithCallbacks(c Callbacks) Option {
	return func(b *Bot) { b.callbacks = c }
}

// WithRunFunc привязывает функцию напрямую, в обход реестра.
func WithRunFunc(fn RunFunc) Option {
	return func(b *Bot) { b.run = fn }
}

// WithObserver получает итог каждой операции (nil при успехе).
func WithObserver(fn func(op string, err error)) Option {
	return func(b *Bot) { b.observe = fn }
}

func WithLogger(entry *log.Entry) Option {
	return func(b *Bot) { b.log = entry }
}

const (
	emptyObject   = "{}"
	contentMarker = "contentHTML"
)

// Bot владеет учётными данными одного аккаунта и выполняет действия от его имени.
// Каждый вызов делает ровно один блокирующий запрос. Bot не рассчитан на
// одновременное использование из нескольких горутин.
type Bot struct {
	store     SessionStore
	transport Transport

	loaded      bool
	id          int64
	userName    string
	password    string
	hash        string
	cookie      string
	data        string
	lastUpdated time.Time

	callbackName string
	callbacks    Callbacks
	run          RunFunc
	observe      func(op string, err error)
	log          *log.Entry
}

func newBot(store SessionStore, transport Transport, opts []Option) *Bot {
	b := &Bot{store: store, transport: transport}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = log.NewEntry(log.StandardLogger())
	}
	return b
}

// Open загружает бота по ident. Если строки нет, бот не загружен и все действия
// возвращают ErrNotLoaded. Если в строке нет полной пары токенов, выполняется
// вход с сохранённым паролем или, при его отсутствии, с password.
// Ошибка возвращается только при сбое хранилища; неудачный вход её не порождает.
func Open(ctx context.Context, store SessionStore, transport Transport, ident Ident, password string, opts ...Option) (*Bot, error) {
	b := newBot(store, transport, opts)

	row, err := ident.load(ctx, store)
	if errors.Is(err, storage.ErrNotFound) {
		b.log.Warnf("[BOT] Бот %s не найден в хранилище", ident)
		return b, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load bot %s", ident)
	}
	b.apply(row)

	if !b.HasSession() {
		if b.password == "" {
			b.password = password
		}
		if b.password != "" {
			// Неудача уже записана в журнал, бот остаётся без сессии.
			_ = b.Login(ctx)
		}
	}
	return b, nil
}

// Enroll заводит нового бота: входит и сохраняет строку (вставляется выключенной).
// Строка создаётся и при неудачном входе, тогда без токенов.
func Enroll(ctx context.Context, store SessionStore, transport Transport, userName, password string, opts ...Option) (*Bot, error) {
	const op = "enroll"
	if strings.TrimSpace(userName) == "" || password == "" {
		return nil, newError(op, KindInvalidArgument, errors.New("user name and password are required"))
	}
	exists, err := store.Exists(ctx, userName)
	if err != nil {
		return nil, newError(op, KindStorage, err)
	}
	if exists {
		return nil, storage.ErrExists
	}

	b := newBot(store, transport, opts)
	b.loaded = true
	b.userName = userName
	b.password = password
	b.log = b.log.WithField("bot", userName)

	// Неудачный вход уже записан в журнал; строка сохраняется и без токенов.
	_ = b.Login(ctx)

	// Login только пишет в журнал сбой сохранения, поэтому строку проверяем здесь.
	row, err := store.FindByUserName(ctx, userName)
	if errors.Is(err, storage.ErrNotFound) {
		if perr := b.persist(ctx); perr != nil {
			return nil, newError(op, KindStorage, perr)
		}
		row, err = store.FindByUserName(ctx, userName)
	}
	if err != nil {
		return nil, newError(op, KindStorage, err)
	}
	b.id = row.ID
	b.lastUpdated = row.LastUpdated
	return b, nil
}

func (b *Bot) apply(row *models.BotSession) {
	b.loaded = true
	b.id = row.ID
	b.userName = row.UserName
	b.password = row.Password
	b.hash = row.SessionHash
	b.cookie = row.SessionCookie
	b.data = row.Data
	b.lastUpdated = row.LastUpdated
	b.callbackName = row.Callback
	b.log = b.log.WithField("bot", row.UserName)

	if b.run == nil && row.Callback != "" {
		if fn, ok := b.callbacks[row.Callback]; ok {
			b.run = fn
		} else {
			b.log.Warnf("[BOT] Неизвестный callback %q, Run недоступен", row.Callback)
		}
	}
}

type loginResponse struct {
	JSON *struct {
		Errors []json.RawMessage `json:"errors"`
		Data   *struct {
			Modhash string `json:"modhash"`
			Cookie  string `json:"cookie"`
		} `json:"data"`
	} `json:"json"`
}

// parseLogin достаёт пару токенов из ответа на вход.
func parseLogin(body string) (hash, cookie string, err error) {
	var resp loginResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", "", errors.Wrap(err, "decode login response")
	}
	if resp.JSON == nil {
		return "", "", errors.New("login response has no json object")
	}
	if len(resp.JSON.Errors) > 0 {
		msgs := make([]string, 0, len(resp.JSON.Errors))
		for _, e := range resp.JSON.Errors {
			msgs = append(msgs, string(e))
		}
		return "", "", errors.Errorf("login rejected: %s", strings.Join(msgs, ", "))
	}
	if resp.JSON.Data == nil || resp.JSON.Data.Modhash == "" || resp.JSON.Data.Cookie == "" {
		return "", "", errors.New("login response has no session tokens")
	}
	return resp.JSON.Data.Modhash, resp.JSON.Data.Cookie, nil
}

// Login входит в аккаунт и сохраняет полученную пару токенов.
// При неудаче текущая сессия не меняется.
func (b *Bot) Login(ctx context.Context) error {
	const op = "login"
	if !b.loaded {
		return b.done(op, newError(op, KindNotLoaded, nil))
	}
	if b.password == "" {
		return b.done(op, newError(op, KindLoginFailed, errors.New("no password")))
	}

	form := NewForm("user", b.userName, "passwd", b.password, "api_type", "json")
	body, err := b.transport.Do(ctx, "api/login/"+pathEscape(b.userName), form, "")
	if err != nil {
		return b.done(op, newError(op, KindTransport, err))
	}
	hash, cookie, err := parseLogin(body)
	if err != nil {
		return b.done(op, newError(op, KindLoginFailed, err))
	}

	b.hash, b.cookie = hash, cookie
	b.log.Infof("[BOT] Вход выполнен")
	if err := b.persist(ctx); err != nil {
		// Сессия уже получена, просто не сохранилась: при следующей загрузке войдём снова.
		b.log.WithError(err).Errorf("[BOT] Не удалось сохранить сессию")
	}
	return b.done(op, nil)
}

// ready проверяет, что бот загружен и у него есть сессия.
func (b *Bot) ready(op string) error {
	if !b.loaded {
		return newError(op, KindNotLoaded, nil)
	}
	if !b.HasSession() {
		return newError(op, KindNoSession, nil)
	}
	return nil
}

func (b *Bot) call(ctx context.Context, op, path string, form *Form) (string, error) {
	if err := b.ready(op); err != nil {
		return "", err
	}
	body, err := b.transport.Do(ctx, path, form, b.cookie)
	if err != nil {
		return "", newError(op, KindTransport, err)
	}
	return body, nil
}

func unexpected(op, body string) error {
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return newError(op, KindUnexpectedResponse, errors.Errorf("body %q", body))
}

// Vote голосует за объект. Успех — только тело ответа, в точности равное {}.
func (b *Bot) Vote(ctx context.Context, dir models.VoteDirection, kind models.ThingKind, id string) error {
	const op = "vote"
	if !dir.IsValid() || !kind.IsValid() || id == "" {
		return b.done(op, newError(op, KindInvalidArgument, errors.Errorf("dir=%d kind=%d id=%q", dir, kind, id)))
	}
	body, err := b.call(ctx, op, "api/vote/", NewForm("id", Fullname(kind, id), "dir", dir.String(), "uh", b.hash))
	if err == nil && body != emptyObject {
		err = unexpected(op, body)
	}
	return b.done(op, err)
}

// Comment публикует ответ на объект. Успех — в ответе есть отрендеренный контент.
func (b *Bot) Comment(ctx context.Context, text string, kind models.ThingKind, id string) error {
	const op = "comment"
	if !kind.IsValid() || id == "" {
		return b.done(op, newError(op, KindInvalidArgument, errors.Errorf("kind=%d id=%q", kind, id)))
	}
	body, err := b.call(ctx, op, "api/comment/", NewForm("thing_id", Fullname(kind, id), "text", text, "uh", b.hash))
	if err == nil && !strings.Contains(body, contentMarker) {
		err = unexpected(op, body)
	}
	return b.done(op, err)
}

// Report отправляет жалобу модераторам на объект.
func (b *Bot) Report(ctx context.Context, kind models.ThingKind, id string) error {
	const op = "report"
	if !kind.IsValid() || id == "" {
		return b.done(op, newError(op, KindInvalidArgument, errors.Errorf("kind=%d id=%q", kind, id)))
	}
	body, err := b.call(ctx, op, "api/report/", NewForm("id", Fullname(kind, id), "uh", b.hash))
	if err == nil && body != emptyObject {
		err = unexpected(op, body)
	}
	return b.done(op, err)
}

type listingResponse struct {
	Data *struct {
		Children json.RawMessage `json:"children"`
	} `json:"data"`
}

// parseListing возвращает data.children. Пустой листинг — пустой, но не nil срез.
func parseListing(body string) ([]json.RawMessage, error) {
	var resp listingResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, errors.Wrap(err, "decode listing")
	}
	if resp.Data == nil {
		return nil, errors.New("listing has no data object")
	}
	raw := bytes.TrimSpace(resp.Data.Children)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, errors.New("data.children is not an array")
	}
	children := []json.RawMessage{}
	if err := json.Unmarshal(raw, &children); err != nil {
		return nil, errors.Wrap(err, "decode children")
	}
	return children, nil
}

// GetListing загружает страницу (например "r/golang" или "message/inbox")
// и возвращает её элементы без разбора.
func (b *Bot) GetListing(ctx context.Context, page string) ([]json.RawMessage, error) {
	const op = "listing"
	page = strings.TrimPrefix(strings.TrimSpace(page), "/")
	if page == "" {
		return nil, b.done(op, newError(op, KindInvalidArgument, errors.New("empty page")))
	}
	body, err := b.call(ctx, op, page, nil)
	if err != nil {
		return nil, b.done(op, err)
	}
	children, err := parseListing(body)
	if err != nil {
		return nil, b.done(op, newError(op, KindUnexpectedResponse, err))
	}
	return children, b.done(op, nil)
}

// HasSession сообщает, что у бота есть обе части токена сессии.
func (b *Bot) HasSession() bool {
	return b.hash != "" && b.cookie != ""
}

// Run вызывает привязанную функцию с этим ботом.
func (b *Bot) Run(ctx context.Context) (interface{}, error) {
	const op = "run"
	if b.run == nil {
		return nil, b.done(op, newError(op, KindNoCallbackBound, nil))
	}
	res, err := b.run(ctx, b)
	return res, b.done(op, err)
}

// Save принудительно сохраняет данные и токены бота.
func (b *Bot) Save(ctx context.Context) error {
	const op = "save"
	if !b.loaded {
		return b.done(op, newError(op, KindNotLoaded, nil))
	}
	if err := b.persist(ctx); err != nil {
		return b.done(op, newError(op, KindStorage, err))
	}
	return b.done(op, nil)
}

// persist обновляет существующую строку или вставляет новую выключенную.
func (b *Bot) persist(ctx context.Context) error {
	exists, err := b.store.Exists(ctx, b.userName)
	if err != nil {
		return err
	}
	if exists {
		_, err = b.store.Update(ctx, b.userName, b.hash, b.cookie, b.data)
	} else {
		_, err = b.store.Insert(ctx, b.userName, b.password, b.hash, b.cookie, false)
	}
	if err != nil {
		return err
	}
	b.lastUpdated = time.Now()
	return nil
}

func (b *Bot) done(op string, err error) error {
	if b.observe != nil {
		b.observe(op, err)
	}
	if err != nil {
		b.log.WithField("kind", KindOf(err).String()).Warnf("[BOT] %s не выполнено: %v", op, err)
	}
	return err
}

func (b *Bot) Loaded() bool           { return b.loaded }
func (b *Bot) ID() int64              { return b.id }
func (b *Bot) UserName() string       { return b.userName }
func (b *Bot) Data() string           { return b.data }
func (b *Bot) SetData(data string)    { b.data = data }
func (b *Bot) LastUpdated() time.Time { return b.lastUpdated }
func (b *Bot) CallbackName() string   { return b.callbackName }
