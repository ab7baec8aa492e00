// Package reporting группирует факты о часах в сводки, разбивки и отчеты.
// Все функции чистые: вход уже отфильтрован по области видимости.
package reporting

import (
	"fmt"
	"time"
)

// Period предустановленный интервал отчета
type Period string

const (
	PeriodWeekly      Period = "weekly"
	PeriodMonthly     Period = "monthly"
	PeriodThisMonth   Period = "this-month"
	PeriodLastMonth   Period = "last-month"
	PeriodThisQuarter Period = "this-quarter"
	PeriodThisYear    Period = "this-year"
)

// Range закрытый интервал [From, To]
type Range struct {
	From time.Time `json:"start"`
	To   time.Time `json:"end"`
}

// Contains проверяет попадание момента в интервал
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// monthRange от первого дня месяца до конца последнего дня месяца offset
func monthRange(now time.Time, offset int) Range {
	first := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return Range{From: first, To: endOfDay(last)}
}

// CurrentMonth интервал текущего месяца
func CurrentMonth(now time.Time) Range {
	return monthRange(now.UTC(), 0)
}

// ResolveRange вычисляет интервал по пресету. Явные границы start и end
// заменяют пресет, только если заданы обе. Неизвестный пресет означает текущий месяц.
// Расчет ведется в UTC.
func ResolveRange(period Period, start, end *time.Time, now time.Time) Range {
	if start != nil && end != nil {
		return Range{From: start.UTC(), To: end.UTC()}
	}

	now = now.UTC()
	switch period {
	case PeriodWeekly:
		sunday := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
		return Range{From: sunday, To: endOfDay(sunday.AddDate(0, 0, 6))}
	case PeriodLastMonth:
		return monthRange(now, -1)
	case PeriodThisQuarter:
		q := (int(now.Month()) - 1) / 3
		first := time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
		return Range{From: first, To: endOfDay(first.AddDate(0, 3, -1))}
	case PeriodThisYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return Range{From: first, To: endOfDay(time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC))}
	default:
		return monthRange(now, 0)
	}
}

// BucketKey ключ корзины для почасовой разбивки: "Week N" для недельного
// периода (N = ceil(день месяца / 7)), иначе "Jan 2006"
func BucketKey(period Period, date time.Time) string {
	date = date.UTC()
	if period == PeriodWeekly {
		return fmt.Sprintf("Week %d", (date.Day()+6)/7)
	}
	return date.Format("Jan 2006")
}
