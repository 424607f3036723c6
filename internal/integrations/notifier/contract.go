package notifier

import "context"

// Publisher транспорт событий (*mq.Publisher)
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
