package availability

import "errors"

var (
	// ErrInvalidInput возвращается при некорректном интервале
	ErrInvalidInput = errors.New("availability: invalid input")

	// ErrFetchReservations возвращается, когда не удалось получить бронирования
	ErrFetchReservations = errors.New("availability: failed to fetch reservations")
)
