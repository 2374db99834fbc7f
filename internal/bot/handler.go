package bot

import (
	"context"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"rdt_go/internal/httputil"
	"rdt_go/internal/metrics"
	"rdt_go/internal/middleware"
	"rdt_go/internal/module/bot_mutex"
	"rdt_go/models"
	"rdt_go/pkg/reddit"
)

// PasswordHeader передаёт пароль на случай, если в строке бота его нет.
const PasswordHeader = "X-Bot-Password"

// Store — хранилище ботов, которое нужно API.
type Store interface {
	reddit.SessionStore
	SetCallback(ctx context.Context, name, callback string) error
}

type BotHandler struct {
	Store     Store
	Transport reddit.Transport
	Callbacks reddit.Callbacks
}

func NewHandler(store Store, transport reddit.Transport, callbacks reddit.Callbacks) *BotHandler {
	return &BotHandler{
		Store:     store,
		Transport: transport,
		Callbacks: callbacks,
	}
}

type enrollRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

func (r enrollRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Password, validation.Required),
	)
}

type targetRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (r targetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required),
		validation.Field(&r.ID, validation.Required),
	)
}

type voteRequest struct {
	targetRequest
	Direction string `json:"direction"`
}

func (r voteRequest) Validate() error {
	if err := r.targetRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&r, validation.Field(&r.Direction, validation.Required))
}

type commentRequest struct {
	targetRequest
	Text string `json:"text"`
}

func (r commentRequest) Validate() error {
	if err := r.targetRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&r, validation.Field(&r.Text, validation.Required))
}

type dataRequest struct {
	Data *string `json:"data"`
}

func (r dataRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Data, validation.NotNil))
}

type callbackRequest struct {
	Callback string `json:"callback"`
}

// bind читает JSON и проверяет его; при ошибке ответ уже отправлен.
func bind(c *gin.Context, req validation.Validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Printf("[HANDLER ERROR] Неверный формат запроса: %v", err)
		httputil.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := req.Validate(); err != nil {
		log.Printf("[HANDLER ERROR] Ошибка валидации: %v", err)
		httputil.RespondError(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *BotHandler) options(c *gin.Context) []reddit.Option {
	return []reddit.Option{
		reddit.WithCallbacks(h.Callbacks),
		reddit.WithObserver(metrics.Observe),
		reddit.WithLogger(log.WithField("request_id", middleware.GetRequestID(c))),
	}
}

// identFromPath разбирает :name или :id маршрута.
func identFromPath(c *gin.Context) (reddit.Ident, bool) {
	if raw := c.Param("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return reddit.Ident{}, false
		}
		return reddit.ByID(id), true
	}
	if name := c.Param("name"); name != "" {
		return reddit.ByUserName(name), true
	}
	return reddit.Ident{}, false
}

// withBot загружает бота из маршрута, держит его блокировку и вызывает fn.
// Незагруженный бот сразу даёт 404.
func (h *BotHandler) withBot(c *gin.Context, fn func(ctx context.Context, b *reddit.Bot)) {
	ident, ok := identFromPath(c)
	if !ok {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid bot identifier")
		return
	}
	key := ident.String()
	if err := bot_mutex.LockBot(key); err != nil {
		httputil.RespondBotError(c, err)
		return
	}
	defer bot_mutex.UnlockBot(key)

	ctx := c.Request.Context()
	b, err := reddit.Open(ctx, h.Store, h.Transport, ident, c.GetHeader(PasswordHeader), h.options(c)...)
	if err != nil {
		log.Printf("[HANDLER ERROR] Не удалось загрузить бота %s: %v", key, err)
		httputil.RespondError(c, http.StatusInternalServerError, "Failed to load bot")
		return
	}
	if !b.Loaded() {
		httputil.RespondBotError(c, reddit.ErrNotLoaded)
		return
	}
	fn(ctx, b)
}

func sessionView(b *reddit.Bot) gin.H {
	return gin.H{
		"ok":           true,
		"id":           b.ID(),
		"user_name":    b.UserName(),
		"has_session":  b.HasSession(),
		"data":         b.Data(),
		"callback":     b.CallbackName(),
		"last_updated": b.LastUpdated().Unix(),
	}
}

// Enroll заводит нового бота.
func (h *BotHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if !bind(c, &req) {
		return
	}
	b, err := reddit.Enroll(c.Request.Context(), h.Store, h.Transport, req.UserName, req.Password, h.options(c)...)
	if err != nil {
		httputil.RespondBotError(c, err)
		return
	}
	log.Printf("[HANDLER INFO] Бот %s заведён, сессия: %v", b.UserName(), b.HasSession())
	c.JSON(http.StatusCreated, sessionView(b))
}

func (h *BotHandler) Session(c *gin.Context) {
	h.withBot(c, func(_ context.Context, b *reddit.Bot) {
		c.JSON(http.StatusOK, sessionView(b))
	})
}

func (h *BotHandler) Login(c *gin.Context) {
	h.withBot(c, func(ctx context.Context, b *reddit.Bot) {
		if err := b.Login(ctx); err != nil {
			httputil.RespondBotError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "has_session": b.HasSession()})
	})
}

// parseTarget проверяет вид объекта; при ошибке ответ уже отправлен.
func parseTarget(c *gin.Context, t targetRequest) (models.ThingKind, bool) {
	kind, err := models.ParseThingKind(t.Kind)
	if err != nil {
		httputil.RespondError(c, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return kind, true
}

func (h *BotHandler) Vote(c *gin.Context) {
	var req voteRequest
	if !bind(c, &req) {
		return
	}
	kind, ok := parseTarget(c, req.targetRequest)
	if !ok {
		return
	}
	dir, err := models.ParseVoteDirection(req.Direction)
	if err != nil {
		httputil.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	h.withBot(c, func(ctx context.Context, b *reddit.Bot) {
		respond(c, b.Vote(ctx, dir, kind, req.ID))
	})
}

func (h *BotHandler) Comment(c *gin.Context) {
	var req commentRequest
	if !bind(c, &req) {
		return
	}
	kind, ok := parseTarget(c, req.targetRequest)
	if !ok {
		return
	}
	h.withBot(c, func(ctx context.Context, b *reddit.Bot) {
		respond(c, b.Comment(ctx, req.Text, kind, req.ID))
	})
}

func (h *BotHandler) Report(c *gin.Context) {
	var req targetRequest
	if !bind(c, &req) {
		return
	}
	kind, ok := parseTarget(c, req)
	if !ok {
		return
	}
	h.withBot(c, func(ctx context.Context, b *reddit.Bot) {
		respond(c, b.Report(ctx, kind, req.ID))
	})
}

func (h *BotHandler) Listing(c *gin.Context) {
	page := c.Query("page")
	if page == "" {
		httputil.RespondError(c, http.StatusBadRequest, "page is required")
		return
	}
	h.withBot(c, func(ctx context.Context, b *reddit.Bot) {
		children, err := b.GetListing(ctx, page)
		if err != nil {
			httputil.RespondBotError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(children), "children": children})
	})
}

// SetData заменяет данные бота и сразу сохраняет их.
func (h *BotHandler) SetData(c *gin.Context) {
	var req dataRequest
	if !bind(c, &req) {
		return
	}
	h.withBot(c, func(ctx context.Context, b *reddit.Bot) {
		b.SetData(*req.Data)
		respond(c, b.Save(ctx))
	})
}

func (h *BotHandler) Save(c *gin.Context) {
	h.withBot(c, func(ctx context.Context, b *reddit.Bot) {
		respond(c, b.Save(ctx))
	})
}

func (h *BotHandler) Run(c *gin.Context) {
	h.withBot(c, func(ctx context.Context, b *reddit.Bot) {
		res, err := b.Run(ctx)
		if err != nil {
			httputil.RespondBotError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
	})
}

// BindCallback записывает имя функции в bot_callback. Пустое имя отвязывает её.
func (h *BotHandler) BindCallback(c *gin.Context) {
	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	if _, ok := h.Callbacks[req.Callback]; req.Callback != "" && !ok {
		httputil.RespondError(c, http.StatusBadRequest, "Unknown callback")
		return
	}
	h.withBot(c, func(ctx context.Context, b *reddit.Bot) {
		if err := h.Store.SetCallback(ctx, b.UserName(), req.Callback); err != nil {
			log.Printf("[HANDLER ERROR] Не удалось привязать callback: %v", err)
			httputil.RespondBotError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "callback": req.Callback})
	})
}

func respond(c *gin.Context, err error) {
	if err != nil {
		httputil.RespondBotError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
