package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/inventory"
)

var today = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func TestIsExpired(t *testing.T) {
	cases := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"ayer", today.AddDate(0, 0, -1), true},
		{"hoy", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), false},
		{"mañana", today.AddDate(0, 0, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &entity.Batch{ExpiryDate: tc.expiry}
			assert.Equal(t, tc.want, inventory.IsExpired(b, today))
		})
	}
}

func TestIsNearExpiry(t *testing.T) {
	cases := []struct {
		name      string
		expiry    time.Time
		alertDays int
		qty       int
		want      bool
	}{
		{"dentro del umbral", today.AddDate(0, 0, 30), 60, 5, true},
		{"justo en el umbral", today.AddDate(0, 0, 60), 60, 5, true},
		{"fuera del umbral", today.AddDate(0, 0, 61), 60, 5, false},
		{"sin existencias", today.AddDate(0, 0, 10), 60, 0, false},
		{"umbral por defecto", today.AddDate(0, 0, 59), 0, 1, true},
		{"vencido con stock", today.AddDate(0, 0, -3), 60, 2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &entity.Batch{ExpiryDate: tc.expiry, ExpiryAlertDays: tc.alertDays, Quantity: tc.qty}
			assert.Equal(t, tc.want, inventory.IsNearExpiry(b, today))
		})
	}
}

func TestChecklistLabel(t *testing.T) {
	detail := func(qty, reorder int, expiry time.Time) *entity.BatchDetail {
		return &entity.BatchDetail{
			Batch:        entity.Batch{Quantity: qty, ExpiryDate: expiry},
			ReorderLevel: reorder,
		}
	}
	far := today.AddDate(1, 0, 0)
	near := today.AddDate(0, 0, 10)

	assert.Equal(t, inventory.ChecklistLowAndExpiring, inventory.ChecklistLabel(detail(1, 5, near), today, 60))
	assert.Equal(t, inventory.ChecklistLowStock, inventory.ChecklistLabel(detail(5, 5, far), today, 60))
	assert.Equal(t, inventory.ChecklistExpiry, inventory.ChecklistLabel(detail(50, 5, near), today, 60))
	assert.Equal(t, inventory.ChecklistHealthy, inventory.ChecklistLabel(detail(50, 5, far), today, 60))
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, inventory.IsPlaceholder("PLACEHOLDER-001"))
	assert.True(t, inventory.IsPlaceholder("placeholder-x"))
	assert.False(t, inventory.IsPlaceholder("B-2024-01"))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, inventory.DaysUntil(time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC), today))
	assert.Equal(t, 10, inventory.DaysUntil(today.AddDate(0, 0, 10), today))
	assert.Equal(t, -1, inventory.DaysUntil(today.AddDate(0, 0, -1), today))
}
