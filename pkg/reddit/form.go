package reddit

import (
	"net/url"
	"strings"
)

// Form — тело application/x-www-form-urlencoded, сохраняющее порядок полей.
// url.Values сортирует ключи, а API ждёт поля в порядке добавления.
type Form struct {
	keys   []string
	values []string
}

// NewForm собирает форму из пар ключ/значение.
func NewForm(pairs ...string) *Form {
	f := &Form{}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Add(pairs[i], pairs[i+1])
	}
	return f
}

func (f *Form) Add(key, value string) *Form {
	f.keys = append(f.keys, key)
	f.values = append(f.values, value)
	return f
}

// Get возвращает первое значение ключа.
func (f *Form) Get(key string) string {
	for i, k := range f.keys {
		if k == key {
			return f.values[i]
		}
	}
	return ""
}

func (f *Form) Len() int { return len(f.keys) }

// Encode кодирует форму как key=value&..., экранируя только значения.
func (f *Form) Encode() string {
	var sb strings.Builder
	for i, k := range f.keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(f.values[i]))
	}
	return sb.String()
}
