package service

import (
	"time"

	"github.com/vendapay/internal/models"
)

// Period 年月
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CurrentPeriod 当前年月
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: int(now.Month())}
}

// Validate 校验年份范围与月份
func (p Period) Validate(minYear, maxYear int) error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	if p.Year < minYear || p.Year > maxYear {
		return ErrInvalidPeriod
	}
	return nil
}

// Bounds 返回当月首日与末日
func (p Period) Bounds() (models.Date, models.Date) {
	first := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return models.DateOf(first), models.DateOf(last)
}

// Previous 上一个月
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Contains 判断日期是否落在该月
func (p Period) Contains(d models.Date) bool {
	return d.Year() == p.Year && int(d.Month()) == p.Month
}

// PeriodOf 日期所在年月
func PeriodOf(d models.Date) Period {
	return Period{Year: d.Year(), Month: int(d.Month())}
}

// Display 例如 "Junho/2025"
func (p Period) Display() string {
	return models.FormatPeriod(p.Year, p.Month)
}
