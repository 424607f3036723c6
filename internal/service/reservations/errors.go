package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrTenantNotFound возвращается, когда арендатор не найден
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrIllegalTransition возвращается при недопустимом переходе статуса
	ErrIllegalTransition = errors.New("reservation already finalized")

	// ErrNotExpired возвращается при попытке отметить уведомление для неистёкшего бронирования
	ErrNotExpired = errors.New("reservation is not expired")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrStoreUnavailable возвращается, когда хранилище недоступно
	ErrStoreUnavailable = errors.New("reservation store unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
