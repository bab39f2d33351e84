package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"belt-and-braces/internal/middleware"
	"belt-and-braces/internal/repository"
	"belt-and-braces/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest represents the product create/replace payload
type ProductRequest struct {
	Family      string `json:"family" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// ProductPatchRequest represents a partial product update. Pointer fields
// distinguish "not supplied" from "set to the zero value".
type ProductPatchRequest struct {
	Family      *string `json:"family"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// BuildRequest represents the build create payload
type BuildRequest struct {
	Description string `json:"description"`
	Source      string `json:"source" validate:"required,url"`
	Version     string `json:"version" validate:"required"`
	Timestamp   string `json:"timestamp" validate:"required"`
	Target      string `json:"target" validate:"required,url"`
	Taxonomy    string `json:"taxonomy"`
	SHA512      string `json:"sha512" validate:"omitempty,len=128,hexadecimal"`
}

// BuildPatchRequest represents a partial build update
type BuildPatchRequest struct {
	Description *string `json:"description"`
	Source      *string `json:"source"`
	Version     *string `json:"version"`
	Timestamp   *string `json:"timestamp"`
	Target      *string `json:"target"`
	Taxonomy    *string `json:"taxonomy"`
	SHA512      *string `json:"sha512"`
}

// ProductHandler handles HTTP requests for products and their builds
type ProductHandler struct {
	products service.ProductService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/builds", h.ListBuilds)
		r.Get("/{id}/builds/{buildID}", h.GetBuild)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Replace)
			r.Patch("/{id}", h.Patch)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/builds", h.AddBuild)
			r.Patch("/{id}/builds/{buildID}", h.PatchBuild)
		})
	})
}

// List handles product listing with optional name/family filters
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{
		Name:   r.URL.Query().Get("name"),
		Family: r.URL.Query().Get("family"),
	}

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetByID handles fetching one product with its builds
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.products.Create(r.Context(), req.Family, req.Name, req.Description)
	if err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
	)
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Replace handles a full product update
func (h *ProductHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.products.Replace(r.Context(), id, req.Family, req.Name, req.Description)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Patch handles a partial product update
func (h *ProductHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req ProductPatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.products.Patch(r.Context(), id, service.ProductPatch{
		Family:      req.Family,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err, id)
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ListBuilds handles listing the builds of one product
func (h *ProductHandler) ListBuilds(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	builds, err := h.products.ListBuilds(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, builds)
}

// GetBuild handles fetching one build of one product
func (h *ProductHandler) GetBuild(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	buildID, ok := h.pathID(w, r, "buildID")
	if !ok {
		return
	}

	build, err := h.products.GetBuild(r.Context(), id, buildID)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, build)
}

// AddBuild handles build creation under a product
func (h *ProductHandler) AddBuild(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req BuildRequest
	if !h.decode(w, r, &req) {
		return
	}

	build, err := h.products.AddBuild(r.Context(), id, service.BuildInput{
		Description: req.Description,
		Source:      req.Source,
		Version:     req.Version,
		Timestamp:   req.Timestamp,
		Target:      req.Target,
		Taxonomy:    req.Taxonomy,
		SHA512:      req.SHA512,
	})
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}

	h.logger.Info("Build created",
		zap.Int64("product_id", id),
		zap.Int64("build_id", build.ID),
		zap.String("version", build.Version),
	)
	middleware.RespondWithJSON(w, http.StatusOK, build)
}

// PatchBuild handles a partial build update
func (h *ProductHandler) PatchBuild(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	buildID, ok := h.pathID(w, r, "buildID")
	if !ok {
		return
	}

	var req BuildPatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	build, err := h.products.PatchBuild(r.Context(), id, buildID, service.BuildPatch{
		Description: req.Description,
		Source:      req.Source,
		Version:     req.Version,
		Timestamp:   req.Timestamp,
		Target:      req.Target,
		Taxonomy:    req.Taxonomy,
		SHA512:      req.SHA512,
	})
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, build)
}

// pathID parses a numeric path parameter. A non-numeric id cannot refer to
// any stored entity, so it is reported as not found.
func (h *ProductHandler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("No product with id=%s.", raw))
		return 0, false
	}
	return id, true
}

// decode reads and validates the request body, responding on failure
func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug("Request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respondServiceError maps service errors onto HTTP responses. The bad
// build rule gets the fixed message body the API has always used.
func (h *ProductHandler) respondServiceError(w http.ResponseWriter, err error, productID int64) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("No product with id=%d.", productID))
	case errors.Is(err, repository.ErrBuildNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "No build with that id.")
	case errors.Is(err, service.ErrBadBuild):
		middleware.RespondWithJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Bad Trip"})
	default:
		h.logger.Error("Product operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
