package model

import (
	"strings"

	apperrors "github.com/proxymarket/admin-api/internal/errors"
)

// ShopRequest is the payload for creating or updating a shop.
type ShopRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
}

// Validate checks required fields and formats.
func (r ShopRequest) Validate() error {
	if err := requireName("name", r.Name); err != nil {
		return err
	}
	if err := validateEmail("email", r.Email); err != nil {
		return err
	}
	if err := validatePhone("phone", r.Phone); err != nil {
		return err
	}
	return validateWebsite("website", r.Website)
}

// CourierRequest is the payload for creating or updating a delivery agent.
type CourierRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	Zone  string `json:"zone,omitempty"`
}

func (r CourierRequest) Validate() error {
	if err := requireName("name", r.Name); err != nil {
		return err
	}
	if err := validatePhone("phone", r.Phone); err != nil {
		return err
	}
	if strings.TrimSpace(r.Email) != "" {
		return validateEmail("email", r.Email)
	}
	return nil
}

// ClientRequest is the payload for updating a marketplace client record.
type ClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (r ClientRequest) Validate() error {
	if err := requireName("name", r.Name); err != nil {
		return err
	}
	if err := validateEmail("email", r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.Phone) != "" {
		return validatePhone("phone", r.Phone)
	}
	return nil
}

// ProductRequest is the payload for creating or updating a product.
type ProductRequest struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	ShopID string  `json:"shop_id"`
}

func (r ProductRequest) Validate() error {
	if err := requireName("name", r.Name); err != nil {
		return err
	}
	if r.Price < 0 {
		return apperrors.ValidationField("price", "Le prix doit être positif.")
	}
	if strings.TrimSpace(r.ShopID) == "" {
		return apperrors.ValidationField("shop_id", "Ce champ est obligatoire.")
	}
	return nil
}

// Order statuses the dashboard can set.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatusRequest is the payload for updating an order's status.
type OrderStatusRequest struct {
	Status string `json:"status"`
}

func (r OrderStatusRequest) Validate() error {
	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return nil
	default:
		return apperrors.ValidationField("status", "Statut de commande inconnu.")
	}
}

// BannerRequest is the payload for creating or updating a home banner.
type BannerRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Link     string `json:"link,omitempty"`
}

func (r BannerRequest) Validate() error {
	if err := requireName("title", r.Title); err != nil {
		return err
	}
	if strings.TrimSpace(r.ImageURL) == "" {
		return apperrors.ValidationField("image_url", "Ce champ est obligatoire.")
	}
	return validateWebsite("link", r.Link)
}

// AdminRequest is the payload for creating or updating a dashboard admin.
type AdminRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

func (r AdminRequest) Validate() error {
	if err := requireName("name", r.Name); err != nil {
		return err
	}
	return validateEmail("email", r.Email)
}
