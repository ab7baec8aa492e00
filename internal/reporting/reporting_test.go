package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untibullet/hours-ledger/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func view(id, client, developer string, rate, hours float64, date string) models.HourLogView {
	return models.HourLogView{
		HourLog: models.HourLog{
			ID:          id,
			ClientID:    "id-" + client,
			DeveloperID: "id-" + developer,
			ProjectID:   "id-project",
			Date:        day(date),
			Hours:       hours,
		},
		Client:    models.Ref{ID: "id-" + client, Name: client},
		Developer: models.Ref{ID: "id-" + developer, Name: developer, HourlyRate: rate},
		Project:   models.Ref{ID: "id-project", Name: "Project"},
	}
}

func januaryLogs() []models.HourLogView {
	return []models.HourLogView{
		view("1", "clientA", "dev", 40, 5, "2024-01-05"),
		view("2", "clientA", "dev", 40, 3, "2024-01-20"),
		view("3", "clientB", "dev", 40, 2, "2024-01-10"),
	}
}

func TestClientBreakdownSortsByHours(t *testing.T) {
	got := ClientBreakdown(januaryLogs())

	require.Len(t, got, 2)
	assert.Equal(t, "clientA", got[0].ClientName)
	assert.Equal(t, 8.0, got[0].TotalHours)
	assert.Equal(t, 2, got[0].TotalLogs)
	assert.Equal(t, 4.0, got[0].AvgHoursPerLog)
	assert.Equal(t, "clientB", got[1].ClientName)
	assert.Equal(t, 2.0, got[1].TotalHours)
}

func TestClientBreakdownTiesByName(t *testing.T) {
	got := ClientBreakdown([]models.HourLogView{
		view("1", "beta", "dev", 0, 2, "2024-01-05"),
		view("2", "alpha", "dev", 0, 2, "2024-01-05"),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].ClientName)
}

func TestDeveloperEarningsMultiplySum(t *testing.T) {
	logs := []models.HourLogView{
		view("1", "c", "x", 33.33, 0.5, "2024-01-01"),
		view("2", "c", "x", 33.33, 0.5, "2024-01-02"),
		view("3", "c", "x", 33.33, 0.5, "2024-01-03"),
		view("4", "c", "y", 10, 8, "2024-01-03"),
	}
	got := DeveloperBreakdown(logs)

	require.Len(t, got, 2)
	assert.Equal(t, "y", got[0].DeveloperName)
	assert.Equal(t, 80.0, got[0].TotalEarnings)
	assert.InDelta(t, 49.995, got[1].TotalEarnings, 1e-9)
}

func TestDailyBreakdownAscending(t *testing.T) {
	got := DailyBreakdown(januaryLogs())

	require.Len(t, got, 3)
	assert.Equal(t, []string{"2024-01-05", "2024-01-10", "2024-01-20"}, []string{got[0].Date, got[1].Date, got[2].Date})
	assert.Equal(t, 1, got[0].UniqueClientsCount)
}

func TestSummarize(t *testing.T) {
	s := Summarize(januaryLogs())

	assert.Equal(t, 10.0, s.TotalHours)
	assert.Equal(t, 3, s.TotalLogs)
	assert.InDelta(t, 3.333, s.AvgHoursPerLog, 0.001)
	assert.Equal(t, 2, s.UniqueClientsCount)
	assert.Equal(t, 1, s.UniqueDevelopersCount)
	require.NotNil(t, s.DateRange)
	assert.Equal(t, day("2024-01-05"), s.DateRange.From)
	assert.Equal(t, day("2024-01-20"), s.DateRange.To)

	empty := Summarize(nil)
	assert.Zero(t, empty.AvgHoursPerLog)
	assert.Nil(t, empty.DateRange)
}

func TestResolveRange(t *testing.T) {
	// среда, 14 февраля 2024
	now := time.Date(2024, 2, 14, 15, 30, 0, 0, time.UTC)
	endOf := func(s string) time.Time { return day(s).Add(24*time.Hour - time.Nanosecond) }

	tests := []struct {
		period Period
		from   time.Time
		to     time.Time
	}{
		{PeriodWeekly, day("2024-02-11"), endOf("2024-02-17")},
		{PeriodThisMonth, day("2024-02-01"), endOf("2024-02-29")},
		{PeriodMonthly, day("2024-02-01"), endOf("2024-02-29")},
		{PeriodLastMonth, day("2024-01-01"), endOf("2024-01-31")},
		{PeriodThisQuarter, day("2024-01-01"), endOf("2024-03-31")},
		{PeriodThisYear, day("2024-01-01"), endOf("2024-12-31")},
		{"unknown", day("2024-02-01"), endOf("2024-02-29")},
	}
	for _, tc := range tests {
		t.Run(string(tc.period), func(t *testing.T) {
			r := ResolveRange(tc.period, nil, nil, now)
			assert.Equal(t, tc.from, r.From)
			assert.Equal(t, tc.to, r.To)
		})
	}

	start, end := day("2023-05-01"), day("2023-05-10")
	r := ResolveRange(PeriodWeekly, &start, &end, now)
	assert.Equal(t, Range{From: start, To: end}, r, "custom range overrides preset")

	r = ResolveRange(PeriodLastMonth, &start, nil, now)
	assert.Equal(t, day("2024-01-01"), r.From, "half range keeps preset")
}

func TestBucketKey(t *testing.T) {
	assert.Equal(t, "Week 1", BucketKey(PeriodWeekly, day("2024-03-07")))
	assert.Equal(t, "Week 2", BucketKey(PeriodWeekly, day("2024-03-08")))
	assert.Equal(t, "Week 5", BucketKey(PeriodWeekly, day("2024-03-31")))
	assert.Equal(t, "Mar 2024", BucketKey(PeriodThisMonth, day("2024-03-31")))
}

func TestClientPeriodHoursBuckets(t *testing.T) {
	got := ClientPeriodHours(PeriodThisYear, []models.HourLogView{
		view("1", "a", "x", 0, 2, "2024-01-05"),
		view("2", "a", "y", 0, 3, "2024-02-05"),
		view("3", "a", "x", 0, 1, "2024-02-06"),
	})

	require.Len(t, got, 1)
	assert.Equal(t, 6.0, got[0].TotalHours)
	assert.Equal(t, map[string]float64{"Jan 2024": 2, "Feb 2024": 4}, got[0].MonthlyHours)
	assert.Empty(t, got[0].WeeklyHours)
	assert.Len(t, got[0].Developers, 2)
	assert.Equal(t, 3, got[0].LogsCount)
}

func TestDeveloperPeriodHoursUniqueClients(t *testing.T) {
	got := DeveloperPeriodHours(PeriodWeekly, []models.HourLogView{
		view("1", "b", "x", 0, 2, "2024-01-01"),
		view("2", "a", "x", 0, 3, "2024-01-02"),
		view("3", "b", "x", 0, 1, "2024-01-09"),
	})

	require.Len(t, got, 1)
	assert.Equal(t, []string{"a", "b"}, got[0].Clients)
	assert.Equal(t, map[string]float64{"Week 1": 5, "Week 2": 1}, got[0].WeeklyHours)
}

func TestClientProjectHours(t *testing.T) {
	logs := januaryLogs()
	logs[2].ProjectID, logs[2].Project = "id-alpha", models.Ref{ID: "id-alpha", Name: "Alpha"}

	got := ClientProjectHours(logs)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Project", got[1].Name)
	assert.Equal(t, 8.0, got[1].TotalHours)
	assert.Equal(t, []DeveloperHoursOnProject{{ID: "id-dev", Name: "dev", Hours: 8}}, got[1].Developers)
	assert.Equal(t, Range{From: day("2024-01-05"), To: day("2024-01-20")}, got[1].DateRange)
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
	logs := append(januaryLogs(), view("4", "clientC", "dev", 0, 4, "2023-12-30"))

	d := BuildDashboard(logs, now)
	assert.Equal(t, 10.0, d.TotalHoursThisMonth)
	assert.Equal(t, 14.0, d.TotalHoursOverall)
	assert.Len(t, d.RecentLogs, 4)
	require.Len(t, d.TopClientsThisMonth, 2)
	assert.Equal(t, "clientA", d.TopClientsThisMonth[0].ClientName)
}

func TestBuildReportData(t *testing.T) {
	data, totals := BuildReportData(januaryLogs())

	assert.Equal(t, ReportTotals{TotalHours: 10, TotalClients: 2, TotalDevelopers: 1}, totals)
	require.Len(t, data.Activities, 3)
	assert.Equal(t, "2024-01-05", data.Activities[0].Date)
	require.Len(t, data.TopClients, 2)
	assert.Equal(t, models.ReportClientTotal{ClientName: "clientA", TotalHours: 8}, data.TopClients[0])
}

func TestCurrentMonthSummaryLabel(t *testing.T) {
	s := CurrentMonthSummary(januaryLogs(), time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "January 2024", s.Month)
	assert.Equal(t, 10.0, s.TotalHours)
}
