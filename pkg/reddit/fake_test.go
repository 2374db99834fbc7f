package reddit

import (
	"context"
	"errors"
)

// transportCall — один записанный вызов транспорта.
type transportCall struct {
	path   string
	form   *Form
	cookie string
}

// fakeTransport отвечает заранее заданными телами по пути запроса.
type fakeTransport struct {
	calls   []transportCall
	replies map[string]string
	fail    map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: map[string]string{}, fail: map[string]bool{}}
}

func (f *fakeTransport) reply(path, body string) *fakeTransport {
	f.replies[path] = body
	return f
}

func (f *fakeTransport) Do(_ context.Context, path string, form *Form, cookie string) (string, error) {
	f.calls = append(f.calls, transportCall{path: path, form: form, cookie: cookie})
	if f.fail[path] {
		return "", errors.New("connection refused")
	}
	return f.replies[path], nil
}

func (f *fakeTransport) count(path string) int {
	n := 0
	for _, c := range f.calls {
		if c.path == path {
			n++
		}
	}
	return n
}

const loginOK = `{"json":{"errors":[],"data":{"modhash":"h1","cookie":"c1"}}}`
