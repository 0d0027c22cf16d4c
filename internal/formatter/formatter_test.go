package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/repositories"
	"github.com/hearthkeep/hearth/internal/schedule"
)

func sampleAppliances() []*models.Appliance {
	a := &models.Appliance{Name: "Dishwasher", Brand: "Bosch", Location: "kitchen", PurchasePrice: 899.99}
	a.ID = "app-1"
	return []*models.Appliance{a}
}

func TestReportRenders(t *testing.T) {
	report := ApplianceReport(sampleAppliances())

	t.Run("csv has header and data rows", func(t *testing.T) {
		data, err := report.ToCSV()
		if err != nil {
			t.Fatalf("ToCSV failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("line count = %d, want 2", len(lines))
		}
		if !strings.HasPrefix(lines[0], "ID,Name,Brand") {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if !strings.Contains(lines[1], "Dishwasher") || !strings.Contains(lines[1], "$899.99") {
			t.Errorf("unexpected row: %s", lines[1])
		}
	})

	t.Run("markdown has a table", func(t *testing.T) {
		md := string(report.ToMarkdown())
		if !strings.Contains(md, "# Appliances") {
			t.Error("missing title heading")
		}
		if !strings.Contains(md, "| ID | Name |") {
			t.Error("missing table header")
		}
		if !strings.Contains(md, "| --- |") {
			t.Error("missing separator row")
		}
	})

	t.Run("text columns are aligned", func(t *testing.T) {
		text := string(report.ToText())
		if !strings.Contains(text, "Dishwasher") {
			t.Error("missing row data")
		}
		lines := strings.Split(strings.TrimSpace(text), "\n")
		header := lines[2]
		row := lines[3]
		if strings.Index(header, "Name") != strings.Index(row, "Dishwasher") {
			t.Error("columns not aligned")
		}
	})

	t.Run("json includes rows", func(t *testing.T) {
		data, err := Render(report, FormatJSON)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if !strings.Contains(string(data), `"Dishwasher"`) {
			t.Error("missing row data in JSON")
		}
	})

	t.Run("unknown format errors", func(t *testing.T) {
		if _, err := Render(report, "xml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText} {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
	}
	if ValidFormat("pdf") {
		t.Error("ValidFormat(pdf) = true")
	}
}

func TestDueReport(t *testing.T) {
	s := &models.MaintenanceSchedule{Name: "HVAC filter", Frequency: 3, FrequencyUnit: "months"}
	items := []repositories.DueItem{{
		Schedule:      s,
		LastCompleted: "01/15/2024",
		DueDate:       time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		Status:        schedule.StatusDueSoon,
	}}

	report := DueReport(items)
	if len(report.Rows) != 1 {
		t.Fatalf("row count = %d, want 1", len(report.Rows))
	}
	row := report.Rows[0]
	if row[0] != "HVAC filter" || row[2] != "04/15/2024" || row[3] != "due soon" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestSubscriptionReportTotalRow(t *testing.T) {
	s := &models.Subscription{Name: "Streaming", Cost: 15.99, BillingCycle: models.CycleMonthly, Active: true}
	report := SubscriptionReport([]*models.Subscription{s}, 15.99)
	last := report.Rows[len(report.Rows)-1]
	if last[1] != "Monthly total" || last[2] != "$15.99" {
		t.Errorf("unexpected total row: %v", last)
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteReport(ApplianceReport(sampleAppliances()), FormatCSV, dir)
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if !strings.HasSuffix(path, "appliances.csv") {
		t.Errorf("unexpected path %s", path)
	}
}
