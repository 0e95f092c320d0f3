package service

import (
	"errors"
	"testing"
	"time"

	"github.com/vendapay/internal/models"
)

func TestPeriodBoundsAndPrevious(t *testing.T) {
	first, last := Period{Year: 2024, Month: 2}.Bounds()
	if first.String() != "2024-02-01" || last.String() != "2024-02-29" {
		t.Fatalf("unexpected bounds: %s..%s", first, last)
	}
	if prev := (Period{Year: 2025, Month: 1}).Previous(); prev.Year != 2024 || prev.Month != 12 {
		t.Fatalf("unexpected previous: %+v", prev)
	}
	if !(Period{Year: 2025, Month: 6}).Contains(models.NewDate(2025, time.June, 30)) {
		t.Fatalf("june 30 should be in june")
	}
}

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		period Period
		ok     bool
	}{
		{Period{Year: 2024, Month: 1}, true},
		{Period{Year: 2100, Month: 12}, true},
		{Period{Year: 2023, Month: 12}, false},
		{Period{Year: 2101, Month: 1}, false},
		{Period{Year: 2025, Month: 0}, false},
		{Period{Year: 2025, Month: 13}, false},
	}
	for _, tc := range cases {
		err := tc.period.Validate(2024, 2100)
		if tc.ok && err != nil {
			t.Fatalf("%+v should be valid: %v", tc.period, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("%+v want ErrInvalidPeriod got %v", tc.period, err)
		}
	}
}
