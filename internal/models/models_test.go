package models

import (
	"errors"
	"testing"
	"time"

	"github.com/hearthkeep/hearth/internal/shared"
)

func TestRecordTouch(t *testing.T) {
	t.Run("first touch sets both timestamps", func(t *testing.T) {
		now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
		r := &Record{}

		r.Touch(now)

		if !r.CreatedAt.Equal(now) {
			t.Errorf("expected CreatedAt %v, got %v", now, r.CreatedAt)
		}
		if !r.UpdatedAt.Equal(now) {
			t.Errorf("expected UpdatedAt %v, got %v", now, r.UpdatedAt)
		}
	})

	t.Run("later touches keep the creation timestamp", func(t *testing.T) {
		created := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
		updated := created.Add(48 * time.Hour)
		r := &Record{}

		r.Touch(created)
		r.Touch(updated)

		if !r.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt changed to %v", r.CreatedAt)
		}
		if !r.UpdatedAt.Equal(updated) {
			t.Errorf("expected UpdatedAt %v, got %v", updated, r.UpdatedAt)
		}
	})
}

func TestKindName(t *testing.T) {
	t.Run("every entity kind has a name", func(t *testing.T) {
		for _, kind := range EntityKinds {
			if KindName(kind) == "" {
				t.Errorf("kind %d has no name", kind)
			}
		}
	})

	t.Run("unknown kinds have no name", func(t *testing.T) {
		if got := KindName(1); got != "" {
			t.Errorf("expected empty name, got %q", got)
		}
	})
}

func TestEntityKindsMatchModels(t *testing.T) {
	entities := []Model{
		&Appliance{}, &Vehicle{}, &MaintenanceSchedule{}, &MaintenanceCompletion{},
		&Company{}, &Subscription{}, &Property{}, &Project{}, &ProjectMaterial{},
	}

	if len(entities) != len(EntityKinds) {
		t.Fatalf("expected %d entity kinds, got %d", len(entities), len(EntityKinds))
	}
	for i, entity := range entities {
		if entity.Kind() != EntityKinds[i] {
			t.Errorf("entity %d: Kind() = %d, want %d", i, entity.Kind(), EntityKinds[i])
		}
	}
}

func TestValidate(t *testing.T) {
	assertInvalid := func(t *testing.T, m Model) {
		t.Helper()
		if err := m.Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	}

	t.Run("appliance", func(t *testing.T) {
		valid := &Appliance{Name: "Fridge", PurchaseDate: "01/15/2024", PurchasePrice: 899.99}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid appliance, got %v", err)
		}

		assertInvalid(t, &Appliance{})
		assertInvalid(t, &Appliance{Name: "Fridge", PurchaseDate: "2024-01-15"})
		assertInvalid(t, &Appliance{Name: "Fridge", WarrantyExpires: "soon"})
		assertInvalid(t, &Appliance{Name: "Fridge", PurchasePrice: -1})
	})

	t.Run("vehicle", func(t *testing.T) {
		valid := &Vehicle{Name: "Truck", Make: "Toyota", Year: 2019, Odometer: 42000}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid vehicle, got %v", err)
		}

		assertInvalid(t, &Vehicle{})
		assertInvalid(t, &Vehicle{Name: "Truck", Odometer: -1})
		assertInvalid(t, &Vehicle{Name: "Truck", PurchaseDate: "bad"})
	})

	t.Run("maintenance schedule", func(t *testing.T) {
		valid := &MaintenanceSchedule{
			Name:          "Change HVAC filter",
			TargetKind:    TargetAppliance,
			Frequency:     3,
			FrequencyUnit: "months",
			BaseDate:      "01/15/2024",
		}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid schedule, got %v", err)
		}

		assertInvalid(t, &MaintenanceSchedule{Frequency: 1, FrequencyUnit: "months"})
		assertInvalid(t, &MaintenanceSchedule{Name: "x", Frequency: 0, FrequencyUnit: "months"})
		assertInvalid(t, &MaintenanceSchedule{Name: "x", Frequency: 1, FrequencyUnit: "fortnights"})
		assertInvalid(t, &MaintenanceSchedule{Name: "x", Frequency: 1, FrequencyUnit: "months", TargetKind: "boat"})
	})

	t.Run("maintenance completion", func(t *testing.T) {
		valid := &MaintenanceCompletion{ScheduleID: "sched-1", CompletedDate: "02/15/2024", Cost: 20}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid completion, got %v", err)
		}

		assertInvalid(t, &MaintenanceCompletion{CompletedDate: "02/15/2024"})
		assertInvalid(t, &MaintenanceCompletion{ScheduleID: "sched-1"})
		assertInvalid(t, &MaintenanceCompletion{ScheduleID: "sched-1", CompletedDate: "yesterday"})
		assertInvalid(t, &MaintenanceCompletion{ScheduleID: "sched-1", CompletedDate: "02/15/2024", Cost: -5})
	})

	t.Run("company", func(t *testing.T) {
		if err := (&Company{Name: "Ace Plumbing"}).Validate(); err != nil {
			t.Errorf("expected valid company, got %v", err)
		}
		assertInvalid(t, &Company{})
	})

	t.Run("subscription", func(t *testing.T) {
		valid := &Subscription{Name: "Trash pickup", Cost: 30, BillingCycle: CycleMonthly, Active: true}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid subscription, got %v", err)
		}

		assertInvalid(t, &Subscription{Cost: 10})
		assertInvalid(t, &Subscription{Name: "x", Cost: -1})
		assertInvalid(t, &Subscription{Name: "x", BillingCycle: "biweekly"})
		assertInvalid(t, &Subscription{Name: "x", RenewalDate: "next month"})
	})

	t.Run("property", func(t *testing.T) {
		if err := (&Property{Name: "Home", PurchaseDate: "06/01/2015"}).Validate(); err != nil {
			t.Errorf("expected valid property, got %v", err)
		}
		assertInvalid(t, &Property{})
		assertInvalid(t, &Property{Name: "Home", PurchaseDate: "bad"})
	})

	t.Run("project", func(t *testing.T) {
		valid := &Project{Name: "Deck rebuild", Status: ProjectInProgress, Budget: 4000}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid project, got %v", err)
		}

		assertInvalid(t, &Project{})
		assertInvalid(t, &Project{Name: "x", Status: "abandoned"})
		assertInvalid(t, &Project{Name: "x", Budget: -1})
	})

	t.Run("project material", func(t *testing.T) {
		valid := &ProjectMaterial{ProjectID: "proj-1", Name: "Lumber", Cost: 12.5, Quantity: 40}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid material, got %v", err)
		}

		assertInvalid(t, &ProjectMaterial{Name: "Lumber"})
		assertInvalid(t, &ProjectMaterial{ProjectID: "proj-1"})
		assertInvalid(t, &ProjectMaterial{ProjectID: "proj-1", Name: "Lumber", Cost: -1})
		assertInvalid(t, &ProjectMaterial{ProjectID: "proj-1", Name: "Lumber", Quantity: -1})
	})
}
