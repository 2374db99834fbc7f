package reddit

import (
	"encoding/json"

	"rdt_go/models"
)

// Fullname собирает полный идентификатор объекта, например t3_203xa.
func Fullname(kind models.ThingKind, id string) string {
	return kind.Prefix() + "_" + id
}

// Thing — элемент листинга: тип и сырые данные.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// ThingSummary — поля, которые есть у большинства объектов листинга.
type ThingSummary struct {
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Subreddit string  `json:"subreddit"`
	Body      string  `json:"body"`
	Score     int     `json:"score"`
	Created   float64 `json:"created_utc"`
}

// DecodeThing разбирает элемент листинга. Элементы остаются непрозрачными для
// бота, разбор нужен только для вывода.
func DecodeThing(raw json.RawMessage) (Thing, ThingSummary, error) {
	var th Thing
	if err := json.Unmarshal(raw, &th); err != nil {
		return Thing{}, ThingSummary{}, err
	}
	var sum ThingSummary
	if len(th.Data) > 0 {
		if err := json.Unmarshal(th.Data, &sum); err != nil {
			return th, ThingSummary{}, err
		}
	}
	return th, sum, nil
}
