package get_available_slots

import "errors"

var (
	// ErrTenantNotFound возвращается, когда арендатор не найден
	ErrTenantNotFound = errors.New("get_available_slots: tenant not found")

	// ErrResourceNotFound возвращается, когда ресурс не найден или неактивен
	ErrResourceNotFound = errors.New("get_available_slots: resource not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена или не оказывается ресурсом
	ErrServiceNotFound = errors.New("get_available_slots: service not found")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("get_available_slots: invalid date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
