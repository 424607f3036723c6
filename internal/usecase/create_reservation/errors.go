package create_reservation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation возвращается, когда входные данные не прошли проверку
	// Подробности по полям содержит *ValidationError
	ErrValidation = errors.New("create_reservation: validation failed")

	// ErrTenantNotFound возвращается, когда арендатор не найден
	ErrTenantNotFound = errors.New("create_reservation: tenant not found")

	// ErrIdentityMismatch возвращается, когда переданный клиентом tenantId не совпадает с арендатором страницы
	ErrIdentityMismatch = errors.New("create_reservation: tenant identity mismatch")

	// ErrResourceNotFound возвращается, когда ресурс не найден, неактивен или принадлежит другому арендатору
	ErrResourceNotFound = errors.New("create_reservation: resource not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена, неактивна или не оказывается ресурсом
	ErrServiceNotFound = errors.New("create_reservation: service not found")

	// ErrSlotConflict возвращается, когда слот уже занят
	ErrSlotConflict = errors.New("create_reservation: slot is already taken")

	// ErrStoreUnavailable возвращается, когда хранилище недоступно
	ErrStoreUnavailable = errors.New("create_reservation: store unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)

// ValidationError ошибки валидации по полям запроса
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add запоминает первую ошибку для поля
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Empty true, если ошибок нет
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// fieldError ошибка валидации одного поля
func fieldError(field, msg string) *ValidationError {
	e := newValidationError()
	e.Add(field, msg)
	return e
}
