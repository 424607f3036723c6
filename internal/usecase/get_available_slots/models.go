package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	TenantSlug string    // slug публичной страницы
	ResourceID string    // ID мастера или площадки
	Date       time.Time // Дата для получения слотов (без времени)
	ServiceIDs []string  // Выбранные услуги: суммарная длительность определяет длину брони
}

// Response модель ответа со списком слотов
type Response struct {
	Date            time.Time // Дата, на которую запрашивались слоты
	TenantID        string    // ID арендатора
	ResourceID      string    // ID ресурса
	DurationMinutes int       // Длительность брони для выбранных услуг
	Slots           []Slot    // Слоты в порядке времени начала
}

// Slot модель временного слота
type Slot struct {
	StartTime types.TimeString // Время начала слота (например, "10:00")
	EndTime   types.TimeString // Время окончания брони при старте в этот слот
	Available bool             // Слот свободен на всю длительность брони
}

// CheckRequest модель запроса на проверку одного интервала
type CheckRequest struct {
	TenantSlug      string
	ResourceID      string
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
}
