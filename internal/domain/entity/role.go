package entity

import (
	"fmt"
	"strings"
)

// Role rol de un usuario. El conjunto es cerrado: cualquier otro valor es inválido.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Capability permiso puntual que un rol puede tener.
type Capability string

const (
	CapReceiveStock  Capability = "stock.receive"
	CapDispense      Capability = "stock.dispense"
	CapReconcile     Capability = "stock.reconcile"
	CapImportStock   Capability = "stock.import"
	CapViewStock     Capability = "stock.view"
	CapViewRegisters Capability = "registers.view"
	CapManageCatalog Capability = "catalog.manage"
	CapDeleteCatalog Capability = "catalog.delete"
	CapViewAudit     Capability = "audit.view"
	CapViewOwnSales  Capability = "sales.own"
	CapViewAllSales  Capability = "sales.all"
	CapExportReports Capability = "reports.export"
	CapManageUsers   Capability = "users.manage"
)

var staffCapabilities = []Capability{
	CapReceiveStock,
	CapDispense,
	CapReconcile,
	CapViewStock,
	CapViewRegisters,
	CapManageCatalog,
	CapViewAudit,
	CapViewOwnSales,
}

var roleCapabilities = map[Role]map[Capability]bool{
	RoleStaff: capabilitySet(staffCapabilities...),
	RoleAdmin: capabilitySet(append([]Capability{
		CapImportStock,
		CapDeleteCatalog,
		CapViewAllSales,
		CapExportReports,
		CapManageUsers,
	}, staffCapabilities...)...),
}

func capabilitySet(caps ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return m
}

// ParseRole normaliza y valida un rol recibido como texto (token, request, BD).
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid indica si el rol pertenece al conjunto conocido.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can indica si el rol tiene la capacidad pedida. Un rol desconocido no tiene ninguna.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

func (r Role) String() string { return string(r) }
