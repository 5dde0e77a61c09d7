package notify

import "github.com/storegate-io/storegate/internal/domain"

// Audience-specific payload projections. The general tenant room only ever
// sees the reduced shapes below; the full entity is reserved for admin
// audiences. Keeping these as named structs pins the safe subset at compile
// time instead of filtering maps at runtime.

// RemovedRef is the payload of every removal event: the identifier only,
// never a snapshot of the removed entity.
type RemovedRef struct {
	ID string `json:"id"`
}

// ReducedTenant is the tenant summary for the general tenant room.
type ReducedTenant struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// MemberTenant is the storefront-settings shape for the member audience.
type MemberTenant struct {
	Name           string `json:"name"`
	Domain         string `json:"domain"`
	Logo           string `json:"logo,omitempty"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
}

// ReducedProduct is the product summary for the general tenant room.
type ReducedProduct struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// MemberProduct is the storefront catalog shape for the member audience.
type MemberProduct struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	Image         string   `json:"image,omitempty"`
	Gallery       []string `json:"gallery,omitempty"`
	Category      string   `json:"category,omitempty"`
	HasDiscount   bool     `json:"hasDiscount,omitempty"`
	DiscountValue string   `json:"discountValue,omitempty"`
}

// ReducedSupplier is the supplier summary for the general tenant room.
// The API URL is internal and never leaves the admin audience.
type ReducedSupplier struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// MemberSupplier adds the supplier type for the member audience.
type MemberSupplier struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"isActive"`
}

// ReducedUser is the user summary for the general tenant room.
type ReducedUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MemberUser adds the role for the member audience.
type MemberUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func reduceTenant(t *domain.Tenant) ReducedTenant {
	return ReducedTenant{Name: t.Name, Domain: t.Domain}
}

func memberTenant(t *domain.Tenant) MemberTenant {
	return MemberTenant{
		Name:           t.Name,
		Domain:         t.Domain,
		Logo:           t.Logo,
		PrimaryColor:   t.PrimaryColor,
		SecondaryColor: t.SecondaryColor,
	}
}

func reduceProduct(p *domain.Product) ReducedProduct {
	return ReducedProduct{ID: p.ID, Name: p.Name, Price: p.Price}
}

func memberProduct(p *domain.Product) MemberProduct {
	return MemberProduct{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Image:         p.Image,
		Gallery:       p.Gallery,
		Category:      p.Category,
		HasDiscount:   p.HasDiscount,
		DiscountValue: p.DiscountValue,
	}
}

func reduceSupplier(s *domain.Supplier) ReducedSupplier {
	return ReducedSupplier{ID: s.ID, Name: s.Name, IsActive: s.IsActive}
}

func memberSupplier(s *domain.Supplier) MemberSupplier {
	return MemberSupplier{ID: s.ID, Name: s.Name, Type: s.Type, IsActive: s.IsActive}
}

func reduceUser(u *domain.User) ReducedUser {
	return ReducedUser{ID: u.ID, Name: u.Name}
}

func memberUser(u *domain.User) MemberUser {
	return MemberUser{ID: u.ID, Name: u.Name, Role: u.Role}
}
