package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/proxymarket/admin-api/internal/errors"
)

func TestShopRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := ShopRequest{
		Name:    "Boutique Centrale",
		Email:   "contact@boutique.example",
		Phone:   "+225 07 08 09 10 11",
		Website: "https://boutique.example",
	}
	assert.NoError(t, valid.Validate())

	cases := map[string]ShopRequest{
		"missing name":  {Email: "a@b.example", Phone: "0102030405"},
		"bad email":     {Name: "B", Email: "nope", Phone: "0102030405"},
		"short phone":   {Name: "B", Email: "a@b.example", Phone: "12345"},
		"letters phone": {Name: "B", Email: "a@b.example", Phone: "01020x0405"},
		"bad website":   {Name: "B", Email: "a@b.example", Phone: "0102030405", Website: "ftp://x"},
		"no tld":        {Name: "B", Email: "a@b.example", Phone: "0102030405", Website: "https://localhost"},
	}
	for name, req := range cases {
		err := req.Validate()
		assert.Error(t, err, name)
		assert.True(t, apperrors.IsValidation(err), name)
		assert.NotEmpty(t, apperrors.GetField(err), name)
	}
}

func TestShopRequest_WebsiteOptional(t *testing.T) {
	t.Parallel()

	req := ShopRequest{Name: "B", Email: "a@b.example", Phone: "0102030405"}
	assert.NoError(t, req.Validate())
}

func TestCourierRequest_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CourierRequest{Name: "Ali", Phone: "0102030405"}.Validate())
	assert.Error(t, CourierRequest{Phone: "0102030405"}.Validate())
	assert.Error(t, CourierRequest{Name: "Ali", Phone: "0102030405", Email: "bad"}.Validate())
}

func TestProductRequest_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ProductRequest{Name: "Chaussures", Price: 120, ShopID: "s1"}.Validate())
	assert.Error(t, ProductRequest{Name: "Chaussures", Price: -1, ShopID: "s1"}.Validate())
	assert.Error(t, ProductRequest{Name: "Chaussures", Price: 10}.Validate())
}

func TestOrderStatusRequest_Validate(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"pending", "Confirmed", " shipped ", "delivered", "cancelled"} {
		assert.NoError(t, OrderStatusRequest{Status: s}.Validate(), s)
	}
	assert.Error(t, OrderStatusRequest{Status: "teleported"}.Validate())
	assert.Error(t, OrderStatusRequest{}.Validate())
}

func TestBannerRequest_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, BannerRequest{Title: "Promo", ImageURL: "https://cdn.example/p.png"}.Validate())
	assert.Error(t, BannerRequest{ImageURL: "https://cdn.example/p.png"}.Validate())
	assert.Error(t, BannerRequest{Title: "Promo"}.Validate())
}
