package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/feedback_web/internal/apiclient"
	"github.com/Skotchmaster/feedback_web/internal/events"
	"github.com/Skotchmaster/feedback_web/internal/forms"
	"github.com/Skotchmaster/feedback_web/internal/logging"
	"github.com/Skotchmaster/feedback_web/internal/models"
	"github.com/Skotchmaster/feedback_web/internal/render"
	"github.com/Skotchmaster/feedback_web/internal/session"
)

func (h *Handlers) initProductsPage(c echo.Context, _ *session.Session, v *View) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "page.products").Logger()
	view := render.CatalogView{}

	list, err := h.API.ListProducts(ctx)
	switch {
	case apiclient.IsUnauthorized(err):
		return err
	case err != nil:
		l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot load products").Err(err).Msg("load_products_failed")
		v.Notify("Failed to load products")
	default:
		view.Products = render.ProductRows(list)
	}

	// without JavaScript the form is opened through the query string
	if c.QueryParam("mode") == "new" {
		view.Form = render.NewProductForm()
	} else if raw := c.QueryParam("edit"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			v.Notify("Invalid product id")
		} else {
			p, err := h.API.GetProduct(ctx, uint(id))
			switch {
			case apiclient.IsUnauthorized(err):
				return err
			case err != nil:
				l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot load product").Err(err).Msg("load_product_failed")
				v.Notify("Failed to fetch product details")
			default:
				view.Form = render.EditProductForm(*p)
			}
		}
	}

	v.Content = view
	return nil
}

func (h *Handlers) reloadCatalog(c echo.Context, l zerolog.Logger, notice string) error {
	list, err := h.API.ListProducts(c.Request().Context())
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return h.expire(c)
		}
		l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot reload products").Err(err).Msg("load_products_failed")
		return done(c, notice+"\nFailed to load products", productsPath, "catalog", render.CatalogView{})
	}
	return done(c, notice, productsPath, "catalog", render.CatalogView{Products: render.ProductRows(list)})
}

func (h *Handlers) NewProductForm(c echo.Context) error {
	if !isHTMX(c) {
		return c.Redirect(http.StatusSeeOther, productsPath+"?mode=new")
	}
	return c.Render(http.StatusOK, "product_form", render.NewProductForm())
}

func (h *Handlers) EditProductForm(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "product.edit_form").Logger()

	id, err := paramID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product id", productsPath)
	}
	if !isHTMX(c) {
		return c.Redirect(http.StatusSeeOther, productsPath+"?edit="+strconv.FormatUint(uint64(id), 10))
	}

	p, err := h.API.GetProduct(ctx, id)
	if err != nil {
		l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot load product").Err(err).Msg("load_product_failed")
		return h.backendFailed(c, err, "Failed to fetch product details", productsPath)
	}
	return c.Render(http.StatusOK, "product_form", render.EditProductForm(*p))
}

// SaveProduct creates or updates depending only on the hidden id field.
func (h *Handlers) SaveProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "product.save").Logger()
	s := session.FromContext(c)

	var form forms.ProductForm
	if err := c.Bind(&form); err != nil {
		l.Warn().Int("status", 400).Str("reason", "invalid form").Err(err).Msg("product_save_failed")
		return fail(c, http.StatusBadRequest, "Invalid form", productsPath)
	}
	if err := form.Validate(); err != nil {
		l.Info().Int("status", 422).Str("reason", err.Error()).Msg("product_save_failed")
		return fail(c, http.StatusUnprocessableEntity, err.Error(), productsPath)
	}

	var (
		saved  *models.Product
		err    error
		notice string
		evType string
	)
	if id := form.ProductID(); id != 0 {
		saved, err = h.API.UpdateProduct(ctx, id, form.Product())
		if err != nil {
			l.Warn().Int("status", backendStatus(err)).Str("reason", "backend rejected update").Err(err).Msg("product_save_failed")
			return h.backendFailed(c, err, "Failed to update product", productsPath)
		}
		notice, evType = "Product updated successfully", "product_updated"
	} else {
		saved, err = h.API.CreateProduct(ctx, form.Product())
		if err != nil {
			l.Warn().Int("status", backendStatus(err)).Str("reason", "backend rejected create").Err(err).Msg("product_save_failed")
			return h.backendFailed(c, err, "Failed to add product", productsPath)
		}
		notice, evType = "Product added successfully", "product_created"
	}

	h.publish(c, events.TopicProduct, events.Event{Type: evType, UserID: s.User.ID, ProductID: saved.ID})
	l.Info().Uint("product_id", saved.ID).Str("event", evType).Msg("product_save_success")

	return h.reloadCatalog(c, l, notice)
}

func (h *Handlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "product.delete").Logger()
	s := session.FromContext(c)

	id, err := paramID(c)
	if err != nil {
		l.Warn().Int("status", 400).Str("reason", "bad id").Err(err).Msg("product_delete_failed")
		return fail(c, http.StatusBadRequest, "Invalid product id", productsPath)
	}

	if err := h.API.DeleteProduct(ctx, id); err != nil {
		l.Warn().Int("status", backendStatus(err)).Str("reason", "backend rejected delete").Err(err).Msg("product_delete_failed")
		return h.backendFailed(c, err, "Failed to delete product", productsPath)
	}

	h.publish(c, events.TopicProduct, events.Event{Type: "product_deleted", UserID: s.User.ID, ProductID: id})
	l.Info().Uint("product_id", id).Msg("product_delete_success")

	return h.reloadCatalog(c, l, "Product deleted")
}
