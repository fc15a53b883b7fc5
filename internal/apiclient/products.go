package apiclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/feedback_web/internal/models"
)

var (
	epListProducts  = endpoint{http.MethodGet, "/products"}
	epGetProduct    = endpoint{http.MethodGet, "/products/{id}"}
	epCreateProduct = endpoint{http.MethodPost, "/products"}
	epUpdateProduct = endpoint{http.MethodPut, "/products/{id}"}
	epDeleteProduct = endpoint{http.MethodDelete, "/products/{id}"}
)

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, epListProducts, epListProducts.route, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, epGetProduct, epGetProduct.path(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	p.ID = 0
	out := p
	if err := c.do(ctx, epCreateProduct, epCreateProduct.route, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uint, p models.Product) (*models.Product, error) {
	p.ID = id
	out := p
	if err := c.do(ctx, epUpdateProduct, epUpdateProduct.path(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	return c.do(ctx, epDeleteProduct, epDeleteProduct.path(id), nil, nil)
}
