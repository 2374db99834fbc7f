package httputil

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"rdt_go/internal/module/bot_mutex"
	"rdt_go/pkg/reddit"
	"rdt_go/pkg/storage"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{reddit.ErrNotLoaded, http.StatusNotFound},
		{reddit.ErrNoCallbackBound, http.StatusNotFound},
		{reddit.ErrNoSession, http.StatusUnauthorized},
		{reddit.ErrLoginFailed, http.StatusUnauthorized},
		{reddit.ErrTransport, http.StatusBadGateway},
		{reddit.ErrUnexpectedResponse, http.StatusBadGateway},
		{reddit.ErrInvalidArgument, http.StatusBadRequest},
		{reddit.ErrStorage, http.StatusInternalServerError},
		{errors.Wrap(bot_mutex.ErrBusy, "bot x"), http.StatusConflict},
		{storage.ErrExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}
