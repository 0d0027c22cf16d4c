// package formatter renders household collections to tabular reports and
// serializes them as CSV, Markdown, plain text, or JSON for display and export
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/repositories"
	"github.com/hearthkeep/hearth/internal/shared"
)

// Export formats accepted by the export and backup commands.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ValidFormat reports whether f names a supported export format.
func ValidFormat(f string) bool {
	switch f {
	case FormatJSON, FormatCSV, FormatMarkdown, FormatText:
		return true
	}
	return false
}

// Report is a rendered table for one collection.
type Report struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// ToCSV serializes the report with a header row.
func (r *Report) ToCSV() ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(r.Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range r.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders the report as a Markdown table under a heading.
func (r *Report) ToMarkdown() []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.Title))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(r.Rows)))

	buf.WriteString("| " + strings.Join(r.Headers, " | ") + " |\n")
	separators := make([]string, len(r.Headers))
	for i := range separators {
		separators[i] = "---"
	}
	buf.WriteString("| " + strings.Join(separators, " | ") + " |\n")

	for _, row := range r.Rows {
		buf.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	return buf.Bytes()
}

// ToText renders the report as aligned plain-text columns.
func (r *Report) ToText() []byte {
	widths := make([]int, len(r.Headers))
	for i, h := range r.Headers {
		widths[i] = len(h)
	}
	for _, row := range r.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString(r.Title + "\n\n")

	writeRow := func(cells []string) {
		for i, cell := range cells {
			buf.WriteString(cell)
			if i < len(cells)-1 {
				buf.WriteString(strings.Repeat(" ", widths[i]-len(cell)+2))
			}
		}
		buf.WriteString("\n")
	}

	writeRow(r.Headers)
	for _, row := range r.Rows {
		writeRow(row)
	}

	return buf.Bytes()
}

// ToJSON serializes any value, pretty-printed for terminal output.
func ToJSON(v any, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(v, pretty)
}

func money(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("$%.2f", v)
}

// ApplianceReport builds a table over appliances.
func ApplianceReport(items []*models.Appliance) *Report {
	r := &Report{
		Title:   "Appliances",
		Headers: []string{"ID", "Name", "Brand", "Model", "Location", "Purchased", "Warranty", "Price"},
	}
	for _, a := range items {
		r.Rows = append(r.Rows, []string{
			a.ID, a.Name, a.Brand, a.Model, a.Location, a.PurchaseDate,
			a.WarrantyExpires, money(a.PurchasePrice),
		})
	}
	return r
}

// VehicleReport builds a table over vehicles.
func VehicleReport(items []*models.Vehicle) *Report {
	r := &Report{
		Title:   "Vehicles",
		Headers: []string{"ID", "Name", "Make", "Model", "Year", "Plate", "Odometer"},
	}
	for _, v := range items {
		year := ""
		if v.Year != 0 {
			year = strconv.Itoa(v.Year)
		}
		r.Rows = append(r.Rows, []string{
			v.ID, v.Name, v.Make, v.Model, year, v.Plate, strconv.Itoa(v.Odometer),
		})
	}
	return r
}

// ScheduleReport builds a table over maintenance schedules.
func ScheduleReport(items []*models.MaintenanceSchedule) *Report {
	r := &Report{
		Title:   "Maintenance Schedules",
		Headers: []string{"ID", "Name", "Target", "Every", "Base Date", "Est. Cost"},
	}
	for _, s := range items {
		target := s.TargetKind
		if s.TargetID != "" {
			target = fmt.Sprintf("%s %s", s.TargetKind, s.TargetID)
		}
		r.Rows = append(r.Rows, []string{
			s.ID, s.Name, target,
			fmt.Sprintf("%d %s", s.Frequency, s.FrequencyUnit),
			s.BaseDate, money(s.EstimatedCost),
		})
	}
	return r
}

// DueReport builds a table over computed due items, one row per schedule.
func DueReport(items []repositories.DueItem) *Report {
	r := &Report{
		Title:   "Maintenance Due",
		Headers: []string{"Schedule", "Last Done", "Due", "Status"},
	}
	for _, item := range items {
		due := ""
		if !item.DueDate.IsZero() {
			due = item.DueDate.Format("01/02/2006")
		}
		r.Rows = append(r.Rows, []string{
			item.Schedule.Name, item.LastCompleted, due, item.Status.String(),
		})
	}
	return r
}

// CompanyReport builds a table over companies.
func CompanyReport(items []*models.Company) *Report {
	r := &Report{
		Title:   "Companies",
		Headers: []string{"ID", "Name", "Category", "Phone", "Email", "Website"},
	}
	for _, c := range items {
		r.Rows = append(r.Rows, []string{c.ID, c.Name, c.Category, c.Phone, c.Email, c.Website})
	}
	return r
}

// SubscriptionReport builds a table over subscriptions with a monthly total row.
func SubscriptionReport(items []*models.Subscription, monthlyTotal float64) *Report {
	r := &Report{
		Title:   "Subscriptions",
		Headers: []string{"ID", "Name", "Cost", "Cycle", "Renews", "Active"},
	}
	for _, s := range items {
		r.Rows = append(r.Rows, []string{
			s.ID, s.Name, money(s.Cost), s.BillingCycle, s.RenewalDate,
			strconv.FormatBool(s.Active),
		})
	}
	if monthlyTotal > 0 {
		r.Rows = append(r.Rows, []string{"", "Monthly total", money(monthlyTotal), "", "", ""})
	}
	return r
}

// PropertyReport builds a table over properties.
func PropertyReport(items []*models.Property) *Report {
	r := &Report{
		Title:   "Properties",
		Headers: []string{"ID", "Name", "Type", "Address", "Purchased", "Price"},
	}
	for _, p := range items {
		r.Rows = append(r.Rows, []string{
			p.ID, p.Name, p.Type, p.Address, p.PurchaseDate, money(p.PurchasePrice),
		})
	}
	return r
}

// ProjectReport builds a table over projects.
func ProjectReport(items []*models.Project) *Report {
	r := &Report{
		Title:   "Projects",
		Headers: []string{"ID", "Name", "Status", "Budget", "Property"},
	}
	for _, p := range items {
		r.Rows = append(r.Rows, []string{p.ID, p.Name, p.Status, money(p.Budget), p.PropertyID})
	}
	return r
}

// MaterialReport builds a table over project materials.
func MaterialReport(items []*models.ProjectMaterial) *Report {
	r := &Report{
		Title:   "Project Materials",
		Headers: []string{"ID", "Project", "Name", "Cost", "Qty"},
	}
	for _, m := range items {
		qty := ""
		if m.Quantity != 0 {
			qty = strconv.FormatFloat(m.Quantity, 'f', -1, 64)
		}
		r.Rows = append(r.Rows, []string{m.ID, m.ProjectID, m.Name, money(m.Cost), qty})
	}
	return r
}

// Render serializes a report in the requested format.
func Render(r *Report, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(map[string]any{"title": r.Title, "headers": r.Headers, "rows": r.Rows}, true)
	case FormatCSV:
		return r.ToCSV()
	case FormatMarkdown:
		return r.ToMarkdown(), nil
	case FormatText:
		return r.ToText(), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Extension returns the file extension for a format, including the dot.
func Extension(format string) string {
	switch format {
	case FormatMarkdown:
		return ".md"
	default:
		return "." + format
	}
}

// WriteReport renders a report and writes it under dir, returning the path.
func WriteReport(r *Report, format, dir string) (string, error) {
	data, err := Render(r, format)
	if err != nil {
		return "", err
	}

	name := strings.ToLower(strings.ReplaceAll(r.Title, " ", "_")) + Extension(format)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
