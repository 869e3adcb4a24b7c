package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

// ImportRow fila leída de una planilla de recepción de stock.
type ImportRow struct {
	Line         int
	BrandName    string
	BatchNumber  string
	ExpiryDate   time.Time
	Quantity     int
	BuyingPrice  decimal.Decimal
	UnitPrice    decimal.Decimal
	SupplierName string
}

// ImportFailure fila rechazada y su motivo.
type ImportFailure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportSummary resultado de una importación. Cada fila se aplica en su propia transacción.
type ImportSummary struct {
	Received int             `json:"received"`
	Failed   []ImportFailure `json:"failed"`
}

// SheetReader lee filas de recepción desde una planilla (XLSX o CSV). Las filas que no se pueden
// interpretar se devuelven como fallos, sin abortar la lectura.
type SheetReader interface {
	ReadRows(r io.Reader, filename string) ([]ImportRow, []ImportFailure, error)
}

// ImportUseCase importa recepciones masivas pasando cada fila por Receive.
type ImportUseCase struct {
	ledger    *LedgerUseCase
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	reader    SheetReader
}

// NewImportUseCase construye el caso de uso de importación.
func NewImportUseCase(ledger *LedgerUseCase, products repository.ProductRepository, suppliers repository.SupplierRepository, reader SheetReader) *ImportUseCase {
	return &ImportUseCase{ledger: ledger, products: products, suppliers: suppliers, reader: reader}
}

// ImportFile lee la planilla y recibe sus filas. Los fallos de lectura se suman al resumen.
func (uc *ImportUseCase) ImportFile(ctx context.Context, actor entity.Actor, r io.Reader, filename string) (*ImportSummary, error) {
	rows, parseFailures, err := uc.reader.ReadRows(r, filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", filename, domain.ErrInvalidInput, err)
	}
	summary, err := uc.Import(ctx, actor, rows)
	if summary != nil {
		summary.Failed = append(parseFailures, summary.Failed...)
		sort.SliceStable(summary.Failed, func(i, j int) bool { return summary.Failed[i].Line < summary.Failed[j].Line })
	}
	return summary, err
}

// Import recibe cada fila; una fila inválida no detiene las demás.
func (uc *ImportUseCase) Import(ctx context.Context, actor entity.Actor, rows []ImportRow) (*ImportSummary, error) {
	summary := &ImportSummary{Failed: []ImportFailure{}}
	for _, row := range rows {
		if err := uc.importRow(ctx, actor, row); err != nil {
			if errors.Is(err, domain.ErrStore) {
				return summary, err
			}
			summary.Failed = append(summary.Failed, ImportFailure{Line: row.Line, Reason: err.Error()})
			continue
		}
		summary.Received++
	}
	return summary, nil
}

func (uc *ImportUseCase) importRow(ctx context.Context, actor entity.Actor, row ImportRow) error {
	product, err := uc.products.GetByBrandName(ctx, strings.TrimSpace(row.BrandName))
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("product %q: %w", row.BrandName, domain.ErrNotFound)
	}
	in := ReceiveInput{
		ProductID:   product.ID,
		BatchNumber: row.BatchNumber,
		ExpiryDate:  row.ExpiryDate,
		Quantity:    row.Quantity,
		BuyingPrice: row.BuyingPrice,
		UnitPrice:   row.UnitPrice,
	}
	if name := strings.TrimSpace(row.SupplierName); name != "" {
		supplier, err := uc.suppliers.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if supplier == nil {
			return fmt.Errorf("supplier %q: %w", name, domain.ErrNotFound)
		}
		in.SupplierID = supplier.ID
	}
	_, err = uc.ledger.Receive(ctx, actor, in)
	return err
}
