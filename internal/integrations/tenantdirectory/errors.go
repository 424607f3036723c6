package tenantdirectory

import "errors"

var (
	// ErrTenantNotFound возвращается, когда арендатор не найден
	ErrTenantNotFound = errors.New("tenantdirectory client: tenant not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("tenantdirectory client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("tenantdirectory client: invalid response")
)
