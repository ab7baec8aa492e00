package reporting

import (
	"sort"
	"time"

	"github.com/untibullet/hours-ledger/internal/models"
)

const (
	dashboardRecentLogs = 5
	dashboardTopClients = 5
	reportTopClients    = 10
)

// RecentLog строка ленты последних записей
type RecentLog struct {
	ID            string  `json:"id"`
	Project       string  `json:"project"`
	ClientName    string  `json:"clientName"`
	DeveloperName string  `json:"developerName"`
	Hours         float64 `json:"hours"`
	Date          string  `json:"date"`
	Description   string  `json:"description,omitempty"`
}

// TopClient клиент с суммой часов
type TopClient struct {
	ClientID   string  `json:"clientId"`
	ClientName string  `json:"clientName"`
	TotalHours float64 `json:"totalHours"`
}

// Dashboard сводка главной страницы
type Dashboard struct {
	TotalClients        int         `json:"totalClients"`
	TotalDevelopers     int         `json:"totalDevelopers"`
	TotalHoursThisMonth float64     `json:"totalHoursThisMonth"`
	TotalHoursOverall   float64     `json:"totalHoursOverall"`
	RecentLogs          []RecentLog `json:"recentLogs"`
	TopClientsThisMonth []TopClient `json:"topClientsThisMonth"`
}

// BuildDashboard считает часовые показатели; logs от новых к старым.
// Счетчики клиентов и разработчиков заполняет вызывающий.
func BuildDashboard(logs []models.HourLogView, now time.Time) Dashboard {
	month := CurrentMonth(now)
	d := Dashboard{RecentLogs: []RecentLog{}, TopClientsThisMonth: []TopClient{}}

	var thisMonth []models.HourLogView
	for _, l := range logs {
		d.TotalHoursOverall += l.Hours
		if month.Contains(l.Date) {
			d.TotalHoursThisMonth += l.Hours
			thisMonth = append(thisMonth, l)
		}
	}

	for i := 0; i < len(logs) && i < dashboardRecentLogs; i++ {
		l := logs[i]
		d.RecentLogs = append(d.RecentLogs, RecentLog{
			ID:            l.ID,
			Project:       l.Project.Name,
			ClientName:    l.Client.Name,
			DeveloperName: l.Developer.Name,
			Hours:         l.Hours,
			Date:          l.Date.UTC().Format(models.DateLayout),
			Description:   l.Description,
		})
	}

	for i, c := range ClientBreakdown(thisMonth) {
		if i == dashboardTopClients {
			break
		}
		d.TopClientsThisMonth = append(d.TopClientsThisMonth, TopClient{ClientID: c.ClientID, ClientName: c.ClientName, TotalHours: c.TotalHours})
	}
	return d
}

// ReportTotals итоги сгенерированного отчета
type ReportTotals struct {
	TotalHours      float64
	TotalClients    int
	TotalDevelopers int
}

// BuildReportData собирает активности и топ-10 клиентов для отчета
func BuildReportData(logs []models.HourLogView) (*models.ReportData, ReportTotals) {
	s := Summarize(logs)
	totals := ReportTotals{
		TotalHours:      s.TotalHours,
		TotalClients:    s.UniqueClientsCount,
		TotalDevelopers: s.UniqueDevelopersCount,
	}

	data := &models.ReportData{
		Activities: make([]models.ReportActivity, 0, len(logs)),
		TopClients: []models.ReportClientTotal{},
	}
	for _, l := range logs {
		data.Activities = append(data.Activities, models.ReportActivity{
			ClientName:    l.Client.Name,
			DeveloperName: l.Developer.Name,
			ProjectName:   l.Project.Name,
			Hours:         l.Hours,
			Date:          l.Date.UTC().Format(models.DateLayout),
			Description:   l.Description,
		})
	}
	sort.SliceStable(data.Activities, func(i, j int) bool { return data.Activities[i].Date < data.Activities[j].Date })

	for i, c := range ClientBreakdown(logs) {
		if i == reportTopClients {
			break
		}
		data.TopClients = append(data.TopClients, models.ReportClientTotal{ClientName: c.ClientName, TotalHours: c.TotalHours})
	}
	return data, totals
}
