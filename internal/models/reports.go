package models

import "time"

// ReportType тип отчета
type ReportType string

const (
	ReportWeekly  ReportType = "weekly"
	ReportMonthly ReportType = "monthly"
	ReportYearly  ReportType = "yearly"
	ReportCustom  ReportType = "custom"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportWeekly, ReportMonthly, ReportYearly, ReportCustom:
		return true
	}
	return false
}

// ReportStatus состояние асинхронной генерации отчета
type ReportStatus string

const (
	ReportGenerating ReportStatus = "generating"
	ReportCompleted  ReportStatus = "completed"
	ReportFailed     ReportStatus = "failed"
)

// DateRange интервал дат отчета в формате YYYY-MM-DD
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ReportActivity строка активности в отчете
type ReportActivity struct {
	ClientName    string  `json:"clientName"`
	DeveloperName string  `json:"developerName"`
	ProjectName   string  `json:"projectName"`
	Hours         float64 `json:"hours"`
	Date          string  `json:"date"`
	Description   string  `json:"description,omitempty"`
}

// ReportClientTotal итог по клиенту в отчете
type ReportClientTotal struct {
	ClientName string  `json:"clientName"`
	TotalHours float64 `json:"totalHours"`
}

// ReportData детальное содержимое отчета
type ReportData struct {
	Activities []ReportActivity    `json:"activities"`
	TopClients []ReportClientTotal `json:"topClients"`
}

// Report эфемерный отчет; хранится только в памяти процесса
type Report struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Type            ReportType   `json:"type"`
	Status          ReportStatus `json:"status"`
	DateRange       DateRange    `json:"dateRange"`
	TotalHours      float64      `json:"totalHours"`
	TotalClients    int          `json:"totalClients"`
	TotalDevelopers int          `json:"totalDevelopers"`
	ReportData      *ReportData  `json:"reportData,omitempty"`
	Error           string       `json:"error,omitempty"`
	CreatedBy       string       `json:"createdBy"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// ReportFilter фильтр списка отчетов
type ReportFilter struct {
	Type      ReportType
	Status    ReportStatus
	CreatedBy string
	Page      Page
}

// ReportStats сводка по отчетам
type ReportStats struct {
	TotalReports      int `json:"totalReports"`
	CompletedReports  int `json:"completedReports"`
	GeneratingReports int `json:"generatingReports"`
	FailedReports     int `json:"failedReports"`
	ThisWeekReports   int `json:"thisWeekReports"`
}
