package transport

import (
	"embed"
	"html/template"
	"net/http"

	"belt-and-braces/internal/domain"
	"belt-and-braces/internal/middleware"
	"belt-and-braces/internal/repository"
	"belt-and-braces/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// WebHandler serves the HTML home page and the search results fragment.
// Search calls the product service in-process, not over HTTP.
type WebHandler struct {
	products  service.ProductService
	templates *template.Template
	logger    *zap.Logger
}

// NewWebHandler creates a new WebHandler with its parsed templates
func NewWebHandler(products service.ProductService, logger *zap.Logger) (*WebHandler, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &WebHandler{
		products:  products,
		templates: templates,
		logger:    logger,
	}, nil
}

// RegisterRoutes registers the web routes
func (h *WebHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Post("/search", h.Search)
}

// Home renders the landing page
func (h *WebHandler) Home(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("products_cookie"); err == nil {
		h.logger.Debug("Visitor cookie present", zap.String("value", cookie.Value))
	}

	h.render(w, "home.html", nil)
}

// Search renders the results fragment for a form-submitted product search
func (h *WebHandler) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	filter := repository.ProductFilter{
		Name:   r.PostFormValue("name"),
		Family: r.PostFormValue("family"),
	}

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Search failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "search failed")
		return
	}

	h.render(w, "search_results.html", struct {
		Products []*domain.Product
	}{Products: products})
}

func (h *WebHandler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("Template rendering failed",
			zap.String("template", name),
			zap.Error(err),
		)
	}
}
