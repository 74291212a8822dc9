package scheduler

import (
	"testing"
	"time"
)

func TestScheduleValidate(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		wantErr  bool
	}{
		{name: "valid cron", schedule: Schedule{CronExpr: "0 3 * * *"}},
		{name: "valid interval", schedule: Schedule{IntervalSec: 3600}},
		{name: "cron wins over interval", schedule: Schedule{CronExpr: "*/5 * * * *", IntervalSec: 10}},
		{name: "invalid cron", schedule: Schedule{CronExpr: "not a cron"}, wantErr: true},
		{name: "cron with seconds field", schedule: Schedule{CronExpr: "0 0 3 * * *"}, wantErr: true},
		{name: "empty schedule", schedule: Schedule{}, wantErr: true},
		{name: "negative interval", schedule: Schedule{IntervalSec: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScheduleNextDueCron(t *testing.T) {
	s := Schedule{CronExpr: "0 3 * * *"} // каждый день в 3:00 UTC

	from := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	next, err := s.NextDue(from)
	if err != nil {
		t.Fatalf("NextDue() error = %v", err)
	}

	want := time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextDue() = %v, want %v", next, want)
	}
}

func TestScheduleNextDueCronWithTimezone(t *testing.T) {
	s := Schedule{CronExpr: "0 3 * * *", Timezone: "Europe/Moscow"}

	// 10:00 UTC = 13:00 MSK; следующий запуск — 3:00 MSK завтра = 0:00 UTC.
	from := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	next, err := s.NextDue(from)
	if err != nil {
		t.Fatalf("NextDue() error = %v", err)
	}

	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextDue() = %v, want %v", next, want)
	}
}

func TestScheduleNextDueInterval(t *testing.T) {
	s := Schedule{IntervalSec: 900}

	from := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	next, err := s.NextDue(from)
	if err != nil {
		t.Fatalf("NextDue() error = %v", err)
	}

	want := from.Add(15 * time.Minute)
	if !next.Equal(want) {
		t.Errorf("NextDue() = %v, want %v", next, want)
	}
}

func TestScheduleNextDueUnknownTimezoneFallsBackToUTC(t *testing.T) {
	s := Schedule{CronExpr: "0 3 * * *", Timezone: "Mars/Olympus_Mons"}

	from := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	next, err := s.NextDue(from)
	if err != nil {
		t.Fatalf("NextDue() error = %v", err)
	}

	want := time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextDue() = %v, want %v", next, want)
	}
}

func TestValidateCronExpr(t *testing.T) {
	valid := []string{"0 3 * * *", "*/15 * * * *", "0 0 * * 0", "30 2 1 * *"}
	for _, expr := range valid {
		if err := ValidateCronExpr(expr); err != nil {
			t.Errorf("ValidateCronExpr(%q) error = %v", expr, err)
		}
	}

	invalid := []string{"", "61 * * * *", "* * *", "@every"}
	for _, expr := range invalid {
		if err := ValidateCronExpr(expr); err == nil {
			t.Errorf("ValidateCronExpr(%q) expected error", expr)
		}
	}
}
