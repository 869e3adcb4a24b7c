package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
)

// Tipos de asiento del registro DDA.
const (
	EntryIn  = "IN"
	EntryOut = "OUT"
)

// RegisterEntry fila del registro de sustancias controladas (proyección de solo lectura).
type RegisterEntry struct {
	Date         time.Time
	ProductID    string
	BrandName    string
	BatchNumber  string
	EntryType    string
	MovementType entity.MovementType
	Entity       string // proveedor o cliente
	Reference    string // número de recibo si viene de una venta
	QuantityIn   int
	QuantityOut  int
	Balance      int
	Username     string
	Remarks      string
}

// BuildRegister reproduce los movimientos en orden cronológico y acumula un saldo por producto.
// El saldo arranca en cero con el primer movimiento recibido, no en el saldo histórico del producto:
// si movs excluye movimientos anteriores, los saldos quedan relativos al inicio del rango.
func BuildRegister(movs []*entity.LedgerMovement) []RegisterEntry {
	ordered := make([]*entity.LedgerMovement, len(movs))
	copy(ordered, movs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	balances := make(map[string]int)
	entries := make([]RegisterEntry, 0, len(ordered))
	for _, m := range ordered {
		balances[m.ProductID] += m.Delta
		e := RegisterEntry{
			Date:         m.CreatedAt,
			ProductID:    m.ProductID,
			BrandName:    m.BrandName,
			BatchNumber:  m.BatchNumber,
			MovementType: m.Type,
			Entity:       ledgerEntity(m),
			Reference:    m.ReceiptNumber,
			Balance:      balances[m.ProductID],
			Username:     m.Username,
			Remarks:      m.Reason,
		}
		if m.Delta >= 0 {
			e.EntryType = EntryIn
			e.QuantityIn = m.Delta
		} else {
			e.EntryType = EntryOut
			e.QuantityOut = -m.Delta
		}
		entries = append(entries, e)
	}
	return entries
}

func ledgerEntity(m *entity.LedgerMovement) string {
	switch m.Type {
	case entity.MovementSale:
		if m.ClientName != "" {
			return m.ClientName
		}
		return entity.DefaultClientName
	case entity.MovementReceive:
		if m.SupplierName != "" {
			return m.SupplierName
		}
		return "Stock received"
	default:
		return "Stock audit"
	}
}
