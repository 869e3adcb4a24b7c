// Package excel exporta documentos tabulares a XLSX y lee planillas de recepción de stock
// (XLSX o CSV) usando excelize.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/pharmacy-api/internal/application/reports"
)

const sheetName = "Report"

var _ reports.TableRenderer = (*TableRenderer)(nil)

// TableRenderer implementa reports.TableRenderer generando un libro XLSX de una hoja.
type TableRenderer struct{}

// NewTableRenderer construye el exportador.
func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

// Render escribe título, subtítulo, encabezados y filas; devuelve los bytes del XLSX.
func (g *TableRenderer) Render(ctx context.Context, doc *reports.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo título: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"212529"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo encabezado: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo totales: %w", err)
	}

	row := 1
	if doc.Title != "" {
		if err := f.SetCellValue(sheetName, "A1", doc.Title); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
		row++
	}
	if doc.Subtitle != "" {
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), doc.Subtitle); err != nil {
			return nil, err
		}
		row++
	}
	if row > 1 {
		row++ // línea en blanco antes de la tabla
	}

	headers := make([]any, len(doc.Columns))
	for i, c := range doc.Columns {
		headers[i] = c.Header
	}
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, start, &headers); err != nil {
		return nil, fmt.Errorf("excel: encabezados: %w", err)
	}
	if len(doc.Columns) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(doc.Columns), row)
		_ = f.SetCellStyle(sheetName, start, end, headerStyle)
	}
	headerRow := row
	row++

	for _, r := range doc.Rows {
		values := make([]any, len(r.Cells))
		for i, v := range r.Cells {
			values[i] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", row, err)
		}
		if r.Emphasis && len(r.Cells) > 0 {
			end, _ := excelize.CoordinatesToCellName(len(r.Cells), row)
			_ = f.SetCellStyle(sheetName, cell, end, totalStyle)
		}
		row++
	}

	for i, c := range doc.Columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(c.Width) * 8
		if width < 12 {
			width = 12
		}
		_ = f.SetColWidth(sheetName, name, name, width)
	}
	if len(doc.Columns) > 0 {
		_ = f.SetPanes(sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
			ActivePane:  "bottomLeft",
		})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}
