package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/fruitstand-backend/api/responses"
	"github.com/angelmondragon/fruitstand-backend/api/validators"
	"github.com/angelmondragon/fruitstand-backend/internal/products"
	pkgerrors "github.com/angelmondragon/fruitstand-backend/pkg/errors"
	"github.com/angelmondragon/fruitstand-backend/pkg/logger"
	"github.com/angelmondragon/fruitstand-backend/pkg/pagination"
)

const maxProductNameLen = 200

// CreateProductRequest is the admin payload for a new catalog entry.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description *string  `json:"description,omitempty"`
	PriceCents  int      `json:"price_cents" validate:"min=0"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Stock       int      `json:"stock" validate:"min=0"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateProductRequest carries optional catalog mutations.
type UpdateProductRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	PriceCents  *int      `json:"price_cents,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// ListProducts serves the public catalog with cursor pagination.
func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), products.ListProductsInput{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			Tag:    strings.TrimSpace(r.URL.Query().Get("tag")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetProduct serves one catalog entry.
func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// CreateProduct is the admin endpoint for adding catalog entries.
func CreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateProduct(r.Context(), products.CreateProductInput{
			Name:        validators.SanitizeString(body.Name, maxProductNameLen),
			Description: body.Description,
			PriceCents:  body.PriceCents,
			ImageURL:    body.ImageURL,
			Stock:       body.Stock,
			Tags:        body.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UpdateProduct is the admin endpoint for mutating catalog entries.
func UpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body UpdateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateProduct(r.Context(), productID, products.UpdateProductInput{
			Name:        body.Name,
			Description: body.Description,
			PriceCents:  body.PriceCents,
			ImageURL:    body.ImageURL,
			Stock:       body.Stock,
			Tags:        body.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// DeleteProduct is the admin endpoint for removing catalog entries.
func DeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": param})
	}
	return id, nil
}
