package schedule

import "errors"

var (
	// ErrConfigNotFound возвращается, когда расписание не найдено
	ErrConfigNotFound = errors.New("schedule.service: config not found")

	// ErrTenantNotFound возвращается, когда арендатор не найден
	ErrTenantNotFound = errors.New("schedule.service: tenant not found")

	// ErrResourceNotFound возвращается, когда ресурс не принадлежит арендатору
	ErrResourceNotFound = errors.New("schedule.service: resource not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("schedule.service: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("schedule.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedule.service: internal error")
)
