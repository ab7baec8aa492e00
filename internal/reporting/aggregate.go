package reporting

import (
	"sort"
	"time"

	"github.com/untibullet/hours-ledger/internal/models"
)

// Summary общая сводка по набору записей
type Summary struct {
	TotalHours            float64 `json:"totalHours"`
	TotalLogs             int     `json:"totalLogs"`
	AvgHoursPerLog        float64 `json:"avgHoursPerLog"`
	UniqueClientsCount    int     `json:"uniqueClientsCount"`
	UniqueDevelopersCount int     `json:"uniqueDevelopersCount"`
	DateRange             *Range  `json:"dateRange,omitempty"`
}

// MonthSummary сводка за текущий месяц
type MonthSummary struct {
	TotalHours            float64 `json:"totalHours"`
	TotalLogs             int     `json:"totalLogs"`
	AvgHoursPerLog        float64 `json:"avgHoursPerLog"`
	UniqueClientsCount    int     `json:"uniqueClientsCount"`
	UniqueDevelopersCount int     `json:"uniqueDevelopersCount"`
	Month                 string  `json:"month"`
}

type ClientTotal struct {
	ClientID       string  `json:"clientId"`
	ClientName     string  `json:"clientName"`
	ClientEmail    string  `json:"clientEmail"`
	TotalHours     float64 `json:"totalHours"`
	TotalLogs      int     `json:"totalLogs"`
	AvgHoursPerLog float64 `json:"avgHoursPerLog"`
}

type DeveloperTotal struct {
	DeveloperID    string  `json:"developerId"`
	DeveloperName  string  `json:"developerName"`
	DeveloperEmail string  `json:"developerEmail"`
	HourlyRate     float64 `json:"hourlyRate"`
	TotalHours     float64 `json:"totalHours"`
	TotalLogs      int     `json:"totalLogs"`
	AvgHoursPerLog float64 `json:"avgHoursPerLog"`
	TotalEarnings  float64 `json:"totalEarnings"`
}

type DayTotal struct {
	Date                  string  `json:"date"`
	TotalHours            float64 `json:"totalHours"`
	TotalLogs             int     `json:"totalLogs"`
	UniqueClientsCount    int     `json:"uniqueClientsCount"`
	UniqueDevelopersCount int     `json:"uniqueDevelopersCount"`
}

// Breakdown полный ответ эндпоинта отчетов по часам
type Breakdown struct {
	Summary            Summary          `json:"summary"`
	CurrentMonth       MonthSummary     `json:"currentMonth"`
	ClientBreakdown    []ClientTotal    `json:"clientBreakdown"`
	DeveloperBreakdown []DeveloperTotal `json:"developerBreakdown"`
	DailyBreakdown     []DayTotal       `json:"dailyBreakdown"`
}

func avg(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// Summarize считает общую сводку; DateRange берется по минимальной и максимальной дате
func Summarize(logs []models.HourLogView) Summary {
	s := Summary{}
	clients := map[string]struct{}{}
	developers := map[string]struct{}{}
	for i, l := range logs {
		s.TotalHours += l.Hours
		clients[l.ClientID] = struct{}{}
		developers[l.DeveloperID] = struct{}{}
		if i == 0 {
			s.DateRange = &Range{From: l.Date, To: l.Date}
			continue
		}
		if l.Date.Before(s.DateRange.From) {
			s.DateRange.From = l.Date
		}
		if l.Date.After(s.DateRange.To) {
			s.DateRange.To = l.Date
		}
	}
	s.TotalLogs = len(logs)
	s.AvgHoursPerLog = avg(s.TotalHours, s.TotalLogs)
	s.UniqueClientsCount = len(clients)
	s.UniqueDevelopersCount = len(developers)
	return s
}

// CurrentMonthSummary сводка по записям, попавшим в текущий месяц
func CurrentMonthSummary(logs []models.HourLogView, now time.Time) MonthSummary {
	r := CurrentMonth(now)
	in := make([]models.HourLogView, 0, len(logs))
	for _, l := range logs {
		if r.Contains(l.Date) {
			in = append(in, l)
		}
	}
	s := Summarize(in)
	return MonthSummary{
		TotalHours:            s.TotalHours,
		TotalLogs:             s.TotalLogs,
		AvgHoursPerLog:        s.AvgHoursPerLog,
		UniqueClientsCount:    s.UniqueClientsCount,
		UniqueDevelopersCount: s.UniqueDevelopersCount,
		Month:                 r.From.Format("January 2006"),
	}
}

// ClientBreakdown суммы по клиентам, по убыванию часов, при равенстве по имени
func ClientBreakdown(logs []models.HourLogView) []ClientTotal {
	byID := map[string]*ClientTotal{}
	for _, l := range logs {
		t, ok := byID[l.ClientID]
		if !ok {
			t = &ClientTotal{ClientID: l.ClientID, ClientName: l.Client.Name, ClientEmail: l.Client.Email}
			byID[l.ClientID] = t
		}
		t.TotalHours += l.Hours
		t.TotalLogs++
	}

	out := make([]ClientTotal, 0, len(byID))
	for _, t := range byID {
		t.AvgHoursPerLog = avg(t.TotalHours, t.TotalLogs)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHours != out[j].TotalHours {
			return out[i].TotalHours > out[j].TotalHours
		}
		return out[i].ClientName < out[j].ClientName
	})
	return out
}

// DeveloperBreakdown суммы по разработчикам. Заработок считается как
// ставка, умноженная на сумму часов, один раз на группу.
func DeveloperBreakdown(logs []models.HourLogView) []DeveloperTotal {
	byID := map[string]*DeveloperTotal{}
	for _, l := range logs {
		t, ok := byID[l.DeveloperID]
		if !ok {
			t = &DeveloperTotal{
				DeveloperID:    l.DeveloperID,
				DeveloperName:  l.Developer.Name,
				DeveloperEmail: l.Developer.Email,
				HourlyRate:     l.Developer.HourlyRate,
			}
			byID[l.DeveloperID] = t
		}
		t.TotalHours += l.Hours
		t.TotalLogs++
	}

	out := make([]DeveloperTotal, 0, len(byID))
	for _, t := range byID {
		t.AvgHoursPerLog = avg(t.TotalHours, t.TotalLogs)
		t.TotalEarnings = t.HourlyRate * t.TotalHours
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHours != out[j].TotalHours {
			return out[i].TotalHours > out[j].TotalHours
		}
		return out[i].DeveloperName < out[j].DeveloperName
	})
	return out
}

// DailyBreakdown суммы по календарным дням UTC по возрастанию даты
func DailyBreakdown(logs []models.HourLogView) []DayTotal {
	type acc struct {
		DayTotal
		clients    map[string]struct{}
		developers map[string]struct{}
	}
	byDay := map[string]*acc{}
	for _, l := range logs {
		key := l.Date.UTC().Format(models.DateLayout)
		a, ok := byDay[key]
		if !ok {
			a = &acc{DayTotal: DayTotal{Date: key}, clients: map[string]struct{}{}, developers: map[string]struct{}{}}
			byDay[key] = a
		}
		a.TotalHours += l.Hours
		a.TotalLogs++
		a.clients[l.ClientID] = struct{}{}
		a.developers[l.DeveloperID] = struct{}{}
	}

	out := make([]DayTotal, 0, len(byDay))
	for _, a := range byDay {
		a.UniqueClientsCount = len(a.clients)
		a.UniqueDevelopersCount = len(a.developers)
		out = append(out, a.DayTotal)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Build собирает все разбивки. monthLogs записи, из которых считается текущий месяц.
func Build(logs, monthLogs []models.HourLogView, now time.Time) Breakdown {
	return Breakdown{
		Summary:            Summarize(logs),
		CurrentMonth:       CurrentMonthSummary(monthLogs, now),
		ClientBreakdown:    ClientBreakdown(logs),
		DeveloperBreakdown: DeveloperBreakdown(logs),
		DailyBreakdown:     DailyBreakdown(logs),
	}
}
