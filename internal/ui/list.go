package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/repositories"
	"github.com/hearthkeep/hearth/internal/schedule"
)

var (
	_ list.Item = collectionItem{}
	_ list.Item = entityItem{}
)

// collectionItem is one collection in the home menu.
type collectionItem struct {
	name  string
	kind  int // 0 for the due report entry
	count int
}

func (i collectionItem) FilterValue() string { return i.name }
func (i collectionItem) Title() string       { return i.name }
func (i collectionItem) Description() string {
	return fmt.Sprintf("%d items", i.count)
}

// entityItem wraps one entity for display in a collection list.
type entityItem struct {
	id    string
	title string
	desc  string
	model models.Model
}

func (i entityItem) FilterValue() string { return i.title }
func (i entityItem) Title() string       { return i.title }
func (i entityItem) Description() string { return i.desc }

func applianceItem(a *models.Appliance) entityItem {
	desc := a.Location
	if a.Brand != "" {
		desc = joinParts(a.Brand, a.Location)
	}
	return entityItem{id: a.ID, title: a.Name, desc: desc, model: a}
}

func vehicleItem(v *models.Vehicle) entityItem {
	desc := joinParts(v.Make, v.Model)
	if v.Year != 0 {
		desc = joinParts(fmt.Sprintf("%d", v.Year), desc)
	}
	return entityItem{id: v.ID, title: v.Name, desc: desc, model: v}
}

func scheduleItem(s *models.MaintenanceSchedule) entityItem {
	return entityItem{
		id:    s.ID,
		title: s.Name,
		desc:  fmt.Sprintf("every %d %s", s.Frequency, s.FrequencyUnit),
		model: s,
	}
}

func companyItem(c *models.Company) entityItem {
	return entityItem{id: c.ID, title: c.Name, desc: joinParts(c.Category, c.Phone), model: c}
}

func subscriptionItem(s *models.Subscription) entityItem {
	desc := fmt.Sprintf("$%.2f %s", s.Cost, s.BillingCycle)
	if !s.Active {
		desc += " (inactive)"
	}
	return entityItem{id: s.ID, title: s.Name, desc: desc, model: s}
}

func propertyItem(p *models.Property) entityItem {
	return entityItem{id: p.ID, title: p.Name, desc: joinParts(p.Type, p.Address), model: p}
}

func projectItem(p *models.Project) entityItem {
	desc := p.Status
	if p.Budget > 0 {
		desc = joinParts(p.Status, fmt.Sprintf("$%.2f budget", p.Budget))
	}
	return entityItem{id: p.ID, title: p.Name, desc: desc, model: p}
}

func dueItem(d repositories.DueItem) entityItem {
	due := ""
	if !d.DueDate.IsZero() {
		due = d.DueDate.Format(schedule.DateLayout)
	}
	return entityItem{
		id:    d.Schedule.ID,
		title: d.Schedule.Name,
		desc:  joinParts(d.Status.String(), due),
		model: d.Schedule,
	}
}

func joinParts(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return fmt.Sprintf("%s • %s", a, b)
}
