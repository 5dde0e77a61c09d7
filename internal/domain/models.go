package domain

import "time"

// Domain entities for the whitelabel storefront platform.
// These are the public projections of the persisted records; password hashes
// are stored as opaque strings and never leave the store layer.

// Tenant is a whitelabel storefront identified by a domain.
type Tenant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Domain         string    `json:"domain"`
	Logo           string    `json:"logo,omitempty"`
	PrimaryColor   string    `json:"primaryColor,omitempty"`
	SecondaryColor string    `json:"secondaryColor,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// User is a principal belonging to a tenant. Global admins have no TenantID.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	TenantID  string    `json:"clientId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is a catalog item sourced from a supplier and owned by a tenant.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	Image         string    `json:"image,omitempty"`
	Gallery       []string  `json:"gallery,omitempty"`
	Category      string    `json:"category,omitempty"`
	Material      string    `json:"material,omitempty"`
	Department    string    `json:"department,omitempty"`
	HasDiscount   bool      `json:"hasDiscount,omitempty"`
	DiscountValue string    `json:"discountValue,omitempty"`
	ExternalID    string    `json:"externalId,omitempty"`
	SupplierID    string    `json:"supplierId"`
	TenantID      string    `json:"clientId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Supplier is an external product source polled for a tenant's catalog.
type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	APIURL    string    `json:"apiUrl"`
	TenantID  string    `json:"clientId,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
