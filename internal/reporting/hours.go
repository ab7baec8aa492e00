package reporting

import (
	"sort"

	"github.com/untibullet/hours-ledger/internal/models"
)

// ClientHours часы клиента за период с разбивкой по корзинам
type ClientHours struct {
	ClientID      string             `json:"clientId"`
	ClientName    string             `json:"clientName"`
	ClientEmail   string             `json:"clientEmail"`
	TotalHours    float64            `json:"totalHours"`
	WeeklyHours   map[string]float64 `json:"weeklyHours"`
	MonthlyHours  map[string]float64 `json:"monthlyHours"`
	Developers    []models.Ref       `json:"developers"`
	LogsCount     int                `json:"logsCount"`
	TotalProjects []ProjectHours     `json:"totalProjects,omitempty"`
}

// DeveloperHours часы разработчика за период с разбивкой по корзинам
type DeveloperHours struct {
	DeveloperID    string             `json:"developerId"`
	DeveloperName  string             `json:"developerName"`
	DeveloperEmail string             `json:"developerEmail"`
	TotalHours     float64            `json:"totalHours"`
	WeeklyHours    map[string]float64 `json:"weeklyHours"`
	MonthlyHours   map[string]float64 `json:"monthlyHours"`
	Clients        []string           `json:"clients"`
	LogsCount      int                `json:"logsCount"`
}

// ProjectHours проект клиента с залогированными часами
type ProjectHours struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	EstimatedHours float64      `json:"estimatedHours"`
	Developers     []models.Ref `json:"developers"`
	models.LogTotal
}

func addToBucket(period Period, weekly, monthly map[string]float64, l models.HourLogView) {
	key := BucketKey(period, l.Date)
	if period == PeriodWeekly {
		weekly[key] += l.Hours
		return
	}
	monthly[key] += l.Hours
}

// ClientPeriodHours группирует записи периода по клиентам
func ClientPeriodHours(period Period, logs []models.HourLogView) []ClientHours {
	byID := map[string]*ClientHours{}
	seenDev := map[string]map[string]bool{}
	for _, l := range logs {
		c, ok := byID[l.ClientID]
		if !ok {
			c = &ClientHours{
				ClientID:     l.ClientID,
				ClientName:   l.Client.Name,
				ClientEmail:  l.Client.Email,
				WeeklyHours:  map[string]float64{},
				MonthlyHours: map[string]float64{},
				Developers:   []models.Ref{},
			}
			byID[l.ClientID] = c
			seenDev[l.ClientID] = map[string]bool{}
		}
		c.TotalHours += l.Hours
		c.LogsCount++
		addToBucket(period, c.WeeklyHours, c.MonthlyHours, l)
		if !seenDev[l.ClientID][l.DeveloperID] {
			seenDev[l.ClientID][l.DeveloperID] = true
			c.Developers = append(c.Developers, l.Developer)
		}
	}

	out := make([]ClientHours, 0, len(byID))
	for _, c := range byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHours != out[j].TotalHours {
			return out[i].TotalHours > out[j].TotalHours
		}
		return out[i].ClientName < out[j].ClientName
	})
	return out
}

// DeveloperPeriodHours группирует записи периода по разработчикам
func DeveloperPeriodHours(period Period, logs []models.HourLogView) []DeveloperHours {
	byID := map[string]*DeveloperHours{}
	seenClient := map[string]map[string]bool{}
	for _, l := range logs {
		d, ok := byID[l.DeveloperID]
		if !ok {
			d = &DeveloperHours{
				DeveloperID:    l.DeveloperID,
				DeveloperName:  l.Developer.Name,
				DeveloperEmail: l.Developer.Email,
				WeeklyHours:    map[string]float64{},
				MonthlyHours:   map[string]float64{},
				Clients:        []string{},
			}
			byID[l.DeveloperID] = d
			seenClient[l.DeveloperID] = map[string]bool{}
		}
		d.TotalHours += l.Hours
		d.LogsCount++
		addToBucket(period, d.WeeklyHours, d.MonthlyHours, l)
		if !seenClient[l.DeveloperID][l.Client.Name] {
			seenClient[l.DeveloperID][l.Client.Name] = true
			d.Clients = append(d.Clients, l.Client.Name)
		}
	}

	out := make([]DeveloperHours, 0, len(byID))
	for _, d := range byID {
		sort.Strings(d.Clients)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHours != out[j].TotalHours {
			return out[i].TotalHours > out[j].TotalHours
		}
		return out[i].DeveloperName < out[j].DeveloperName
	})
	return out
}

// NamedHours часы по имени участника
type NamedHours struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Hours float64 `json:"hours"`
	Logs  int     `json:"logs"`
}

// HoursSummary сводка часов за интервал
type HoursSummary struct {
	DateRange          Range                `json:"dateRange"`
	TotalHours         float64              `json:"totalHours"`
	TotalLogs          int                  `json:"totalLogs"`
	UniqueClients      int                  `json:"uniqueClients"`
	UniqueDevelopers   int                  `json:"uniqueDevelopers"`
	ClientBreakdown    []NamedHours         `json:"clientBreakdown"`
	DeveloperBreakdown []NamedHours         `json:"developerBreakdown"`
	RecentLogs         []models.HourLogView `json:"recentLogs"`
}

const recentSummaryLogs = 10

// SummarizeHours собирает сводку; logs ожидаются в порядке от новых к старым
func SummarizeHours(r Range, logs []models.HourLogView) HoursSummary {
	s := Summarize(logs)
	out := HoursSummary{
		DateRange:          r,
		TotalHours:         s.TotalHours,
		TotalLogs:          s.TotalLogs,
		UniqueClients:      s.UniqueClientsCount,
		UniqueDevelopers:   s.UniqueDevelopersCount,
		ClientBreakdown:    []NamedHours{},
		DeveloperBreakdown: []NamedHours{},
	}
	for _, c := range ClientBreakdown(logs) {
		out.ClientBreakdown = append(out.ClientBreakdown, NamedHours{ID: c.ClientID, Name: c.ClientName, Email: c.ClientEmail, Hours: c.TotalHours, Logs: c.TotalLogs})
	}
	for _, d := range DeveloperBreakdown(logs) {
		out.DeveloperBreakdown = append(out.DeveloperBreakdown, NamedHours{ID: d.DeveloperID, Name: d.DeveloperName, Email: d.DeveloperEmail, Hours: d.TotalHours, Logs: d.TotalLogs})
	}
	n := len(logs)
	if n > recentSummaryLogs {
		n = recentSummaryLogs
	}
	out.RecentLogs = append([]models.HourLogView{}, logs[:n]...)
	return out
}

// DeveloperHoursOnProject часы разработчика внутри проекта
type DeveloperHoursOnProject struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// ClientProject часы клиента по одному проекту
type ClientProject struct {
	ProjectID  string                    `json:"projectId"`
	Name       string                    `json:"name"`
	TotalHours float64                   `json:"totalHours"`
	Developers []DeveloperHoursOnProject `json:"developers"`
	DateRange  Range                     `json:"dateRange"`
}

// ClientProjectHours группирует записи клиента по проектам, сортировка по имени проекта
func ClientProjectHours(logs []models.HourLogView) []ClientProject {
	byID := map[string]*ClientProject{}
	devIndex := map[string]map[string]int{}
	for _, l := range logs {
		p, ok := byID[l.ProjectID]
		if !ok {
			p = &ClientProject{
				ProjectID:  l.ProjectID,
				Name:       l.Project.Name,
				Developers: []DeveloperHoursOnProject{},
				DateRange:  Range{From: l.Date, To: l.Date},
			}
			byID[l.ProjectID] = p
			devIndex[l.ProjectID] = map[string]int{}
		}
		p.TotalHours += l.Hours
		if l.Date.Before(p.DateRange.From) {
			p.DateRange.From = l.Date
		}
		if l.Date.After(p.DateRange.To) {
			p.DateRange.To = l.Date
		}
		idx, ok := devIndex[l.ProjectID][l.DeveloperID]
		if !ok {
			idx = len(p.Developers)
			devIndex[l.ProjectID][l.DeveloperID] = idx
			p.Developers = append(p.Developers, DeveloperHoursOnProject{ID: l.DeveloperID, Name: l.Developer.Name})
		}
		p.Developers[idx].Hours += l.Hours
	}

	out := make([]ClientProject, 0, len(byID))
	for _, p := range byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}
