package health

import "context"

// Pinger проверка доступности хранилища (*dbmetrics.DB)
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Logger interface {
	Error(format string, v ...interface{})
}
