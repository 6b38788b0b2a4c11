package kafka

import "context"

type (
	Publisher interface {
		SendMessage(ctx context.Context, key, value []byte) error
		Close() error
	}

	Subscriber interface {
		ReadMessage(ctx context.Context) (key, value []byte, err error)
		Close() error
	}
)
