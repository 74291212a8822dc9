package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер cron-выражений (без поля секунд).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Schedule — расписание запуска pipeline.
//
// Если задан CronExpr, IntervalSec игнорируется.
type Schedule struct {
	// CronExpr — cron-выражение.
	// Примеры:
	//   "0 3 * * *"   — каждый день в 3:00 (ночное переобучение)
	//   "0 0 * * 0"   — каждое воскресенье в полночь
	CronExpr string

	// IntervalSec — интервал в секундах между запусками.
	IntervalSec int

	// Timezone — часовой пояс для cron-выражений. По умолчанию UTC.
	Timezone string
}

// IsCron возвращает true, если расписание использует cron-выражение.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true, если расписание использует интервал.
func (s *Schedule) IsInterval() bool {
	return s.CronExpr == "" && s.IntervalSec > 0
}

// Validate проверяет, что расписание задано корректно.
func (s *Schedule) Validate() error {
	if s.IsCron() {
		return ValidateCronExpr(s.CronExpr)
	}
	if s.IsInterval() {
		return nil
	}
	return fmt.Errorf("schedule has neither cron expression nor interval")
}

// NextDue вычисляет следующее время запуска после from.
func (s *Schedule) NextDue(from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil || s.Timezone == "" {
		loc = time.UTC
	}

	fromInTz := from.In(loc)

	if s.IsCron() {
		return nextCron(s.CronExpr, fromInTz)
	}
	if s.IsInterval() {
		return fromInTz.Add(time.Duration(s.IntervalSec) * time.Second).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("schedule has neither cron expression nor interval")
}

// nextCron вычисляет следующее время по cron-выражению.
func nextCron(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}
	return schedule.Next(from).UTC(), nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}
