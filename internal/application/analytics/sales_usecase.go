// Package analytics contiene los casos de uso de ventas e ingresos: "mis ventas", el resumen
// del administrador y las filas del reporte exportable.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

const overviewTopBrands = 5 // marcas en el gráfico de torta

// Period rango de fechas inclusivo por día; nil en un extremo deja el rango abierto.
type Period struct {
	From *time.Time
	To   *time.Time
}

func (p Period) validate() error {
	if p.From != nil && p.To != nil && p.To.Before(*p.From) {
		return fmt.Errorf("end date before start date: %w", domain.ErrInvalidInput)
	}
	return nil
}

func (p Period) filter(userID string) repository.SalesFilter {
	return repository.SalesFilter{UserID: userID, DateRange: repository.DateRange{From: p.From, To: p.To}}
}

// SalesUseCase lecturas de ventas y utilidad. No escribe nada.
type SalesUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	saleRepo      repository.SaleRepository
}

// NewSalesUseCase construye el caso de uso.
func NewSalesUseCase(analyticsRepo repository.AnalyticsRepository, saleRepo repository.SaleRepository) *SalesUseCase {
	return &SalesUseCase{analyticsRepo: analyticsRepo, saleRepo: saleRepo}
}

// MySales ventas del usuario autenticado: total, cantidad, gráfico diario y detalle.
func (uc *SalesUseCase) MySales(ctx context.Context, actor entity.Actor, period Period) (*dto.MySalesDTO, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	filter := period.filter(actor.UserID)

	type summaryResult struct {
		summary entity.SalesSummary
		err     error
	}
	type dailyResult struct {
		days []entity.DailySales
		err  error
	}
	summaryCh := make(chan summaryResult, 1)
	dailyCh := make(chan dailyResult, 1)

	go func() {
		s, err := uc.analyticsRepo.Summary(ctx, filter)
		summaryCh <- summaryResult{s, err}
	}()
	go func() {
		d, err := uc.analyticsRepo.DailySales(ctx, filter)
		dailyCh <- dailyResult{d, err}
	}()

	sales, err := uc.saleRepo.List(ctx, filter)
	summary := <-summaryCh
	daily := <-dailyCh

	if err != nil {
		return nil, fmt.Errorf("my sales: records: %w", err)
	}
	if summary.err != nil {
		return nil, fmt.Errorf("my sales: summary: %w", summary.err)
	}
	if daily.err != nil {
		return nil, fmt.Errorf("my sales: chart: %w", daily.err)
	}

	records := make([]dto.SaleRecordDTO, 0, len(sales))
	for _, s := range sales {
		records = append(records, dto.SaleRecordDTO{
			ID:            s.ID,
			ReceiptNumber: s.ReceiptNumber,
			ClientName:    s.ClientName,
			TotalAmount:   s.TotalAmount.Round(2),
			Date:          s.CreatedAt.Format("2006-01-02 15:04"),
			ItemCount:     len(s.Items),
		})
	}
	return &dto.MySalesDTO{
		TotalRevenue:     summary.summary.Revenue.Round(2),
		TransactionCount: summary.summary.TransactionCount,
		ChartData:        toChart(daily.days),
		Records:          records,
	}, nil
}

// AdminOverview ingresos, utilidad, gráfico diario y top de marcas por utilidad.
// userID vacío incluye a todo el personal.
//
// Tres llamadas en paralelo:
//  1. Summary           → ingresos, utilidad y cantidad de ventas
//  2. DailySales        → gráfico de barras
//  3. TopBrandsByProfit → gráfico de torta (top 5)
func (uc *SalesUseCase) AdminOverview(ctx context.Context, period Period, userID string) (*dto.AdminOverviewDTO, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	filter := period.filter(userID)

	type summaryResult struct {
		summary entity.SalesSummary
		err     error
	}
	type dailyResult struct {
		days []entity.DailySales
		err  error
	}
	type brandsResult struct {
		brands []entity.BrandProfit
		err    error
	}
	summaryCh := make(chan summaryResult, 1)
	dailyCh := make(chan dailyResult, 1)
	brandsCh := make(chan brandsResult, 1)

	go func() {
		s, err := uc.analyticsRepo.Summary(ctx, filter)
		summaryCh <- summaryResult{s, err}
	}()
	go func() {
		d, err := uc.analyticsRepo.DailySales(ctx, filter)
		dailyCh <- dailyResult{d, err}
	}()
	go func() {
		b, err := uc.analyticsRepo.TopBrandsByProfit(ctx, filter, overviewTopBrands)
		brandsCh <- brandsResult{b, err}
	}()

	summary := <-summaryCh
	daily := <-dailyCh
	brands := <-brandsCh

	if summary.err != nil {
		return nil, fmt.Errorf("overview: summary: %w", summary.err)
	}
	if daily.err != nil {
		return nil, fmt.Errorf("overview: chart: %w", daily.err)
	}
	if brands.err != nil {
		return nil, fmt.Errorf("overview: top brands: %w", brands.err)
	}

	pie := make([]dto.PieSliceDTO, 0, len(brands.brands))
	for _, b := range brands.brands {
		pie = append(pie, dto.PieSliceDTO{Name: b.BrandName, Value: b.Profit.Round(2)})
	}
	return &dto.AdminOverviewDTO{
		TotalRevenue:     summary.summary.Revenue.Round(2),
		TotalProfit:      summary.summary.Profit.Round(2),
		TransactionCount: summary.summary.TransactionCount,
		ChartData:        toChart(daily.days),
		PieData:          pie,
	}, nil
}

// ReportLines filas del reporte exportable de ventas, más recientes primero.
func (uc *SalesUseCase) ReportLines(ctx context.Context, period Period, userID string) ([]entity.SalesReportLine, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	return uc.analyticsRepo.ReportLines(ctx, period.filter(userID))
}

func toChart(days []entity.DailySales) []dto.ChartPointDTO {
	out := make([]dto.ChartPointDTO, 0, len(days))
	for _, d := range days {
		out = append(out, dto.ChartPointDTO{Date: d.Date.Format("2006-01-02"), Sales: d.Sales.Round(2)})
	}
	return out
}
