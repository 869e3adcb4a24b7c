package http

import (
	"time"

	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
)

// ledgerNote acompaña al registro reconstruido: el saldo arranca en cero al inicio del rango.
const ledgerNote = "Balances start at zero at the beginning of the requested range; they match on-hand stock only when the range covers the product's full history."

func batchStatus(b *entity.Batch, reorder int, today time.Time) string {
	switch {
	case domaininv.IsExpired(b, today):
		return "expired"
	case domaininv.IsDepleted(b):
		return "depleted"
	case domaininv.IsLowStock(b.Quantity, reorder):
		return "low_stock"
	default:
		return "in_stock"
	}
}

func toBatchResponse(d *entity.BatchDetail, today time.Time) dto.BatchResponse {
	return dto.BatchResponse{
		ID:              d.ID,
		ProductID:       d.ProductID,
		BrandName:       d.BrandName,
		GenericName:     d.GenericName,
		SupplierID:      d.SupplierID,
		SupplierName:    d.SupplierName,
		BatchNumber:     d.BatchNumber,
		ExpiryDate:      d.ExpiryDate.Format("2006-01-02"),
		Quantity:        d.Quantity,
		BuyingPrice:     d.BuyingPrice,
		UnitPrice:       d.UnitPrice,
		ExpiryAlertDays: d.ExpiryAlertDays,
		IsControlled:    d.IsControlled,
		ReorderLevel:    d.ReorderLevel,
		Status:          batchStatus(&d.Batch, d.ReorderLevel, today),
		NearExpiry:      domaininv.IsNearExpiry(&d.Batch, today),
		LowStock:        domaininv.IsLowStock(d.Quantity, d.ReorderLevel),
	}
}

func toBatchList(list []*entity.BatchDetail, today time.Time) []dto.BatchResponse {
	out := make([]dto.BatchResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toBatchResponse(d, today))
	}
	return out
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		BatchID:       m.BatchID,
		Type:          string(m.Type),
		Delta:         m.Delta,
		Reason:        m.Reason,
		UserID:        m.UserID,
		TransactionID: m.TransactionID,
		CreatedAt:     m.CreatedAt,
	}
}

func toSaleResponse(tx *entity.SalesTransaction, warnings []string) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(tx.Items))
	for _, it := range tx.Items {
		items = append(items, dto.SaleItemResponse{
			BatchID:     it.BatchID,
			BrandName:   it.BrandName,
			BatchNumber: it.BatchNumber,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return dto.SaleResponse{
		ID:            tx.ID,
		ReceiptNumber: tx.ReceiptNumber,
		ClientName:    tx.ClientName,
		TotalAmount:   tx.TotalAmount,
		Username:      tx.Username,
		CreatedAt:     tx.CreatedAt,
		Items:         items,
		Warnings:      warnings,
	}
}

func toRegisterEntries(entries []domaininv.RegisterEntry) []dto.RegisterEntryResponse {
	out := make([]dto.RegisterEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.RegisterEntryResponse{
			Date:         e.Date,
			BrandName:    e.BrandName,
			BatchNumber:  e.BatchNumber,
			EntryType:    e.EntryType,
			MovementType: string(e.MovementType),
			Entity:       e.Entity,
			Reference:    e.Reference,
			QuantityIn:   e.QuantityIn,
			QuantityOut:  e.QuantityOut,
			Balance:      e.Balance,
			Username:     e.Username,
			Remarks:      e.Remarks,
		})
	}
	return out
}

func toPrescriptionEntries(entries []*entity.PrescriptionBookEntry) []dto.PrescriptionEntryResponse {
	out := make([]dto.PrescriptionEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.PrescriptionEntryResponse{
			TransactionID:      e.TransactionID,
			Date:               e.Date,
			ReceiptNumber:      e.ReceiptNumber,
			ClientName:         e.ClientName,
			PatientAge:         e.PatientAge,
			PatientSex:         e.PatientSex,
			PrescriberName:     e.PrescriberName,
			MedicalInstitution: e.MedicalInstitution,
			DosageInstructions: e.DosageInstructions,
			Medicines:          e.Medicines,
		})
	}
	return out
}

func toChecklist(items []inventory.ChecklistItem, today time.Time) []dto.ChecklistItemResponse {
	out := make([]dto.ChecklistItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ChecklistItemResponse{BatchResponse: toBatchResponse(it.Batch, today), AlertType: it.AlertType})
	}
	return out
}

func toAuditRecords(list []*entity.MovementRecord) []dto.AuditRecordResponse {
	out := make([]dto.AuditRecordResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.AuditRecordResponse{
			ID:           m.ID,
			DrugName:     m.BrandName,
			BatchNumber:  m.BatchNumber,
			MovementType: string(m.Type),
			Delta:        m.Delta,
			Reason:       m.Reason,
			Date:         m.CreatedAt,
			Username:     m.Username,
		})
	}
	return out
}
