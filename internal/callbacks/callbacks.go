package callbacks

import (
	"context"

	"rdt_go/pkg/reddit"
)

// Default — встроенные функции для колонки bot_callback.
func Default() reddit.Callbacks {
	return reddit.Callbacks{
		"inbox":  listingSize("message/inbox"),
		"unread": listingSize("message/unread"),
	}
}

// listingSize загружает страницу и возвращает число элементов в ней.
func listingSize(page string) reddit.RunFunc {
	return func(ctx context.Context, b *reddit.Bot) (interface{}, error) {
		items, err := b.GetListing(ctx, page)
		if err != nil {
			return nil, err
		}
		return len(items), nil
	}
}
