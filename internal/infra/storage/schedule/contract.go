package schedule

import (
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
