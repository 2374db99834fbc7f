package models

import "time"

// BotSession хранит учётные данные бота и его текущую сессию Reddit.
// Строка таблицы bot_users, одна на имя пользователя.
type BotSession struct {
	ID            int64     `json:"id"`
	UserName      string    `json:"user_name"`
	Password      string    `json:"-"`
	SessionHash   string    `json:"-"` // modhash, передаётся в поле uh
	SessionCookie string    `json:"-"` // значение cookie reddit_session
	Data          string    `json:"data"`
	Callback      string    `json:"callback"` // имя функции из реестра Run
	Enabled       bool      `json:"enabled"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdated   time.Time `json:"last_updated"`
}

// HasTokens сообщает, что сохранены оба токена сессии.
// Половинчатая пара считается отсутствующей.
func (s *BotSession) HasTokens() bool {
	return s.SessionHash != "" && s.SessionCookie != ""
}
