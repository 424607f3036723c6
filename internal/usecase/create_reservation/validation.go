package create_reservation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/slots"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Имена полей в ValidationError
const (
	fieldResourceID = "resourceId"
	fieldDate       = "date"
	fieldStartTime  = "startTime"
	fieldServiceIDs = "serviceIds"
	fieldName       = "customer.name"
	fieldPhone      = "customer.phone"
	fieldEmail      = "customer.email"
	fieldNotes      = "customer.notes"
	fieldPartySize  = "customer.partySize"
)

// validateRequest проверяет поля запроса и собирает все ошибки сразу
func validateRequest(req *Request) (time.Time, types.TimeString, *ValidationError) {
	verr := newValidationError()

	if strings.TrimSpace(req.ResourceID) == "" {
		verr.Add(fieldResourceID, "resourceId is required")
	}

	var date time.Time
	if req.Date == "" {
		verr.Add(fieldDate, "date is required")
	} else {
		parsed, err := time.Parse(domain.DateFormat, req.Date)
		if err != nil {
			verr.Add(fieldDate, "date must be in YYYY-MM-DD format")
		} else {
			date = parsed
		}
	}

	var start types.TimeString
	if req.StartTime == "" {
		verr.Add(fieldStartTime, "startTime is required")
	} else {
		parsed, err := types.NewTimeStringFromString(req.StartTime)
		if err != nil {
			verr.Add(fieldStartTime, "startTime must be in HH:MM format")
		} else {
			start = parsed
		}
	}

	validateServiceIDs(req.ServiceIDs, verr)
	validateCustomer(&req.Customer, verr)

	if verr.Empty() {
		return date, start, nil
	}
	return date, start, verr
}

func validateServiceIDs(ids []string, verr *ValidationError) {
	if len(ids) == 0 {
		verr.Add(fieldServiceIDs, "at least one service is required")
		return
	}
	if len(ids) > domain.MaxServicesPerReservation {
		verr.Add(fieldServiceIDs, fmt.Sprintf("at most %d services allowed", domain.MaxServicesPerReservation))
		return
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			verr.Add(fieldServiceIDs, "service id must not be empty")
			return
		}
		if _, ok := seen[id]; ok {
			verr.Add(fieldServiceIDs, fmt.Sprintf("duplicate service id %q", id))
			return
		}
		seen[id] = struct{}{}
	}
}

func validateCustomer(c *Customer, verr *ValidationError) {
	name := strings.TrimSpace(c.Name)
	nameLen := utf8.RuneCountInString(name)
	switch {
	case nameLen < domain.MinCustomerNameLength:
		verr.Add(fieldName, fmt.Sprintf("name must be at least %d characters", domain.MinCustomerNameLength))
	case nameLen > domain.MaxCustomerNameLength:
		verr.Add(fieldName, fmt.Sprintf("name must be at most %d characters", domain.MaxCustomerNameLength))
	}

	digits, ok := domain.PhoneDigits(c.Phone)
	if !ok || len(digits) < domain.MinPhoneDigits || len(digits) > domain.MaxPhoneDigits {
		verr.Add(fieldPhone, fmt.Sprintf("phone must contain %d to %d digits", domain.MinPhoneDigits, domain.MaxPhoneDigits))
	}

	if c.Email != nil && *c.Email != "" {
		if _, err := mail.ParseAddress(*c.Email); err != nil {
			verr.Add(fieldEmail, "email is invalid")
		}
	}

	if c.Notes != nil && utf8.RuneCountInString(*c.Notes) > domain.MaxNotesLength {
		verr.Add(fieldNotes, fmt.Sprintf("notes must be at most %d characters", domain.MaxNotesLength))
	}
}

// snapshotServices копирует выбранные услуги из каталога и считает итоги
func snapshotServices(tenant *tenantdirectory.Tenant, resourceID string, ids []string) ([]domain.ServiceSelection, error) {
	result := make([]domain.ServiceSelection, 0, len(ids))
	for _, id := range ids {
		svc, ok := tenant.FindService(id)
		if !ok || !svc.IsActive || !svc.OfferedBy(resourceID) {
			return nil, fmt.Errorf("%w: id=%s", ErrServiceNotFound, id)
		}
		if svc.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: service id=%s has no duration", ErrInternal, id)
		}
		result = append(result, domain.ServiceSelection{
			ServiceID:       svc.ID,
			Name:            svc.Name,
			DurationMinutes: svc.DurationMinutes,
			Price:           svc.Price,
		})
	}
	return result, nil
}

// resolveSlot проверяет выбранное время по расписанию и возвращает длительность занятого интервала
//
// Мастер: время должно совпадать с одним из сгенерированных слотов.
// Площадка: бронируется весь рабочий день, время - начало окна.
// Выход за время закрытия допускается, за полночь - нет.
func resolveSlot(
	cfg *domain.ScheduleConfig,
	resource *tenantdirectory.Resource,
	date time.Time,
	start types.TimeString,
	servicesDuration int,
	now time.Time,
) (int, *ValidationError) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return 0, fieldError(fieldDate, "date is in the past")
	}

	duration := servicesDuration
	if resource.IsVenue() {
		windowStart, windowLength, open := slots.FullDaySlot(cfg, date)
		if !open {
			return 0, fieldError(fieldDate, "closed on this date")
		}
		if start.MustMinutes() != windowStart.MustMinutes() {
			return 0, fieldError(fieldStartTime, fmt.Sprintf("venue is booked for the whole day starting at %s", windowStart))
		}
		duration = windowLength
	} else {
		available := slots.GenerateSlots(cfg, date)
		if len(available) == 0 {
			return 0, fieldError(fieldDate, "closed on this date")
		}
		if !slots.Contains(available, start) {
			return 0, fieldError(fieldStartTime, "startTime is not a slot start")
		}
	}

	if date.Equal(today) && start.MustMinutes() <= now.Hour()*60+now.Minute() {
		return 0, fieldError(fieldStartTime, "slot has already started")
	}

	if start.MustMinutes()+duration > types.MinutesPerDay {
		return 0, fieldError(fieldStartTime, "reservation must end by midnight")
	}

	return duration, nil
}
