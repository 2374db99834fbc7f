package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"rdt_go/internal/module/bot_mutex"
	"rdt_go/pkg/reddit"
	"rdt_go/pkg/storage"
)

// RespondError отправляет сообщение об ошибке в едином формате и прекращает обработку запроса.
// Используем AbortWithStatusJSON, чтобы последующие обработчики не выполнялись, даже если забыли вернуть управление.
func RespondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// RespondBotError отвечает ошибкой операции бота со статусом по её виду.
func RespondBotError(c *gin.Context, err error) {
	kind := reddit.KindOf(err)
	c.AbortWithStatusJSON(StatusOf(err), gin.H{"error": err.Error(), "kind": kind.String()})
}

// StatusOf сопоставляет ошибку с HTTP-статусом.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, bot_mutex.ErrBusy), errors.Is(err, storage.ErrExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	}
	switch reddit.KindOf(err) {
	case reddit.KindNotLoaded, reddit.KindNoCallbackBound:
		return http.StatusNotFound
	case reddit.KindNoSession, reddit.KindLoginFailed:
		return http.StatusUnauthorized
	case reddit.KindTransport, reddit.KindUnexpectedResponse:
		return http.StatusBadGateway
	case reddit.KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
