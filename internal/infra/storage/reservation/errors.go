package reservation

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"

	"github.com/lib/pq"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrStatusChanged возвращается, когда условное обновление не затронуло ни одной строки:
	// статус бронирования уже изменился (параллельный переход)
	ErrStatusChanged = errors.New("reservation.repository: reservation status changed")

	// ErrSlotConflict возвращается, когда хранилище отклонило пересекающееся бронирование
	ErrSlotConflict = errors.New("reservation.repository: slot conflict")

	// ErrStoreUnavailable возвращается, когда БД недоступна
	ErrStoreUnavailable = errors.New("reservation.repository: store unavailable")

	// ErrNotInTransaction возвращается, когда операция требует активной транзакции
	ErrNotInTransaction = errors.New("reservation.repository: transaction required")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)

// Коды ошибок PostgreSQL, означающие проигранную гонку за слот
const (
	pqExclusionViolation    = "23P01"
	pqUniqueViolation       = "23505"
	pqSerializationFailure  = "40001"
	pqDeadlockDetected      = "40P01"
	pqAdminShutdown         = "57P01"
	pqCannotConnectNow      = "57P03"
	pqClassConnection       = "08"
	pqClassInsufficientRsrc = "53"
)

// classify определяет sentinel для ошибки драйвера
// fallback используется для прочих ошибок (синтаксис, нарушение CHECK и т.п.)
func classify(err error, fallback error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqExclusionViolation, pqUniqueViolation, pqSerializationFailure, pqDeadlockDetected:
			return ErrSlotConflict
		case pqAdminShutdown, pqCannotConnectNow:
			return ErrStoreUnavailable
		}
		switch pqErr.Code.Class() {
		case pqClassConnection, pqClassInsufficientRsrc:
			return ErrStoreUnavailable
		}
		return fallback
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.DeadlineExceeded):
		return ErrStoreUnavailable
	}

	return fallback
}

// Classify сопоставляет ошибку вне репозитория (например, сбой COMMIT) с ErrSlotConflict
// или ErrStoreUnavailable. Для прочих ошибок возвращает nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	return classify(err, nil)
}
