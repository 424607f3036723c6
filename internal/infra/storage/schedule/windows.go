package schedule

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// windowRecord представление окна работы в колонке weekly_windows (JSONB)
type windowRecord struct {
	IsOpen    bool   `json:"is_open"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func marshalWindows(windows map[time.Weekday]domain.DayWindow) ([]byte, error) {
	records := make(map[string]windowRecord, len(windows))
	for day, w := range windows {
		records[strings.ToLower(day.String())] = windowRecord{
			IsOpen:    w.IsOpen,
			StartTime: w.StartTime.String(),
			EndTime:   w.EndTime.String(),
		}
	}
	return json.Marshal(records)
}

// unmarshalWindows разбирает weekly_windows
// Неизвестные ключи пропускаются: такой день просто считается закрытым
func unmarshalWindows(raw []byte) (map[time.Weekday]domain.DayWindow, error) {
	var records map[string]windowRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	windows := make(map[time.Weekday]domain.DayWindow, len(records))
	for name, rec := range records {
		day, ok := weekdayByName[strings.ToLower(name)]
		if !ok {
			continue
		}
		windows[day] = domain.DayWindow{
			IsOpen:    rec.IsOpen,
			StartTime: types.TimeString(rec.StartTime),
			EndTime:   types.TimeString(rec.EndTime),
		}
	}
	return windows, nil
}
