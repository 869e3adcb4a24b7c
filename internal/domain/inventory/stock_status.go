package inventory

import (
	"strings"
	"time"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
)

// Etiquetas del checklist de conteo físico.
const (
	ChecklistLowAndExpiring = "LOW & EXPIRING"
	ChecklistLowStock       = "LOW STOCK"
	ChecklistExpiry         = "EXPIRY"
	ChecklistHealthy        = "HEALTHY"
)

// DateOnly trunca t al día calendario (UTC) para comparar fechas sin hora.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil días calendario desde today hasta expiry (negativo si ya venció).
func DaysUntil(expiry, today time.Time) int {
	return int(DateOnly(expiry).Sub(DateOnly(today)).Hours() / 24)
}

// IsExpired un lote está vencido si su fecha de vencimiento es anterior a hoy.
// El mismo día del vencimiento todavía se puede dispensar.
func IsExpired(b *entity.Batch, today time.Time) bool {
	return DateOnly(b.ExpiryDate).Before(DateOnly(today))
}

// IsNearExpiry expiry - alert_days <= today, solo para lotes con existencias.
func IsNearExpiry(b *entity.Batch, today time.Time) bool {
	if b.Quantity <= 0 {
		return false
	}
	days := b.ExpiryAlertDays
	if days <= 0 {
		days = entity.DefaultExpiryAlertDays
	}
	return !DateOnly(b.ExpiryDate).AddDate(0, 0, -days).After(DateOnly(today))
}

// IsLowStock cantidad en o por debajo del nivel de reorden.
func IsLowStock(quantity, reorderLevel int) bool {
	return quantity <= reorderLevel
}

// IsDepleted lote sin existencias.
func IsDepleted(b *entity.Batch) bool { return b.Quantity == 0 }

// IsPlaceholder lotes de relleno que no representan stock real.
func IsPlaceholder(batchNumber string) bool {
	return strings.HasPrefix(strings.ToUpper(batchNumber), entity.PlaceholderBatchPrefix)
}

// ChecklistLabel clasifica un lote para el checklist de auditoría física.
// windowDays es la ventana fija de vencimiento del checklist (independiente de ExpiryAlertDays).
func ChecklistLabel(d *entity.BatchDetail, today time.Time, windowDays int) string {
	low := IsLowStock(d.Quantity, d.ReorderLevel)
	expiring := DaysUntil(d.ExpiryDate, today) <= windowDays
	switch {
	case low && expiring:
		return ChecklistLowAndExpiring
	case low:
		return ChecklistLowStock
	case expiring:
		return ChecklistExpiry
	default:
		return ChecklistHealthy
	}
}
