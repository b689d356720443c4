package console

import (
	"fmt"

	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/ui/components"
	"github.com/maadhav-codes/diff2commit/internal/ui/styles"
)

const chartWidth, chartHeight = 60, 10

// UsageTotals renders all-time aggregates.
func UsageTotals(total *models.TotalStats) string {
	return components.RenderTable([]string{"Metric", "Value"}, [][]string{
		{"Total requests", components.FormatCount(total.Requests)},
		{"Successful", fmt.Sprintf("%s (%s)", components.FormatCount(total.Successful), components.FormatPercent(total.SuccessRate()))},
		{"Total tokens", components.FormatCount(total.Tokens)},
		{"Total cost", components.FormatCost(total.Cost)},
	})
}

// UsageMonthly renders the current month and the limit status.
func UsageMonthly(month *models.MonthlyStats, limit models.LimitStatus) string {
	rows := [][]string{
		{"Requests", components.FormatCount(month.Requests)},
		{"Tokens", components.FormatCount(month.Tokens)},
		{"Cost", components.FormatCost(month.Cost)},
	}
	if limit.Limit > 0 {
		rows = append(rows,
			[]string{"Limit", components.FormatCost(limit.Limit)},
			[]string{"Used", styles.GetLimitStyle(limit.Percent()).Render(components.FormatPercent(limit.Percent()))},
		)
	}
	return styles.SubTitleStyle.Render(month.Month) + "\n" +
		components.RenderTable([]string{"Metric", "Value"}, rows)
}

// UsageByProvider renders per-provider aggregates.
func UsageByProvider(stats []models.ProviderStats) string {
	if len(stats) == 0 {
		return styles.MutedTextStyle.Render("No usage recorded")
	}
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			s.Provider,
			s.Model,
			components.FormatCount(s.Requests),
			components.FormatCount(s.Tokens),
			components.FormatCost(s.Cost),
		}
	}
	return components.RenderTable([]string{"Provider", "Model", "Requests", "Tokens", "Cost"}, rows)
}

// UsageRecent renders individual records, newest first.
func UsageRecent(records []models.UsageRecord) string {
	if len(records) == 0 {
		return styles.MutedTextStyle.Render("No usage recorded in this period")
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		status := styles.SuccessTextStyle.Render("✓")
		if !r.Success {
			status = styles.ErrorTextStyle.Render("✗")
		}
		rows[i] = []string{
			r.Timestamp.Format("2006-01-02 15:04"),
			r.Provider,
			r.Model,
			components.FormatCount(r.Tokens),
			components.FormatCost(r.Cost),
			status,
		}
	}
	return components.RenderTable([]string{"Time", "Provider", "Model", "Tokens", "Cost", "OK"}, rows)
}

// Totals prints all-time aggregates.
func (p *Printer) Totals(total *models.TotalStats) {
	p.println(styles.SubTitleStyle.Render("Usage statistics"))
	p.println(UsageTotals(total))
}

// Monthly prints the current month.
func (p *Printer) Monthly(month *models.MonthlyStats, limit models.LimitStatus) {
	p.println(UsageMonthly(month, limit))
}

// ByProvider prints per-provider aggregates.
func (p *Printer) ByProvider(stats []models.ProviderStats) {
	p.println(styles.SubTitleStyle.Render("Usage by provider"))
	p.println(UsageByProvider(stats))
	if len(stats) < 2 {
		return
	}

	values := make([]float64, len(stats))
	labels := make([]string, len(stats))
	for i, s := range stats {
		values[i] = s.Cost
		labels[i] = s.Provider + "/" + s.Model
	}
	p.println(styles.ChartStyle.Render(components.RenderBarChart(values, labels, chartWidth)))
}

// Recent prints records of the last days.
func (p *Printer) Recent(days int, records []models.UsageRecord) {
	p.println(styles.SubTitleStyle.Render(fmt.Sprintf("Usage in the last %d days", days)))
	p.println(UsageRecent(records))
}

// CostChart prints the daily cost chart.
func (p *Printer) CostChart(days []models.DailyCost) {
	p.println(styles.ChartStyle.Render(components.RenderCostChart(days, chartWidth, chartHeight)))
}
