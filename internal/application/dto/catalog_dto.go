package dto

import "time"

// CreateProductRequest entrada para crear un producto (marca).
type CreateProductRequest struct {
	BrandName    string `json:"brand_name" validate:"required,min=1,max=200"`
	GenericID    string `json:"generic_id" validate:"omitempty,uuid"`
	IsControlled bool   `json:"is_controlled"`
	ReorderLevel *int   `json:"reorder_level" validate:"omitempty,min=0"`
}

// UpdateProductRequest actualización parcial de un producto.
type UpdateProductRequest struct {
	BrandName    *string `json:"brand_name" validate:"omitempty,min=1,max=200"`
	GenericID    *string `json:"generic_id" validate:"omitempty"`
	IsControlled *bool   `json:"is_controlled"`
	ReorderLevel *int    `json:"reorder_level" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string    `json:"id"`
	BrandName    string    `json:"brand_name"`
	GenericID    *string   `json:"generic_id"`
	GenericName  string    `json:"generic_name"`
	IsControlled bool      `json:"is_controlled"`
	ReorderLevel int       `json:"reorder_level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// GenericRequest entrada para crear o actualizar un nombre genérico.
type GenericRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// GenericResponse salida de un nombre genérico.
type GenericResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// SupplierRequest entrada para crear o actualizar un proveedor.
type SupplierRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" validate:"omitempty,max=200"`
	Phone         string `json:"phone" validate:"omitempty,max=50"`
	Email         string `json:"email" validate:"omitempty,email"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"created_at"`
}
