package suppliers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/options"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
	internalShared "github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	options   *options.Service
	templates *view.Engine
	csrf      *internalShared.CSRFManager
	sessions  *internalShared.SessionManager
}

func NewHandler(
	logger *slog.Logger,
	service *Service,
	optionService *options.Service,
	templates *view.Engine,
	csrf *internalShared.CSRFManager,
	sessions *internalShared.SessionManager,
) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		options:   optionService,
		templates: templates,
		csrf:      csrf,
		sessions:  sessions,
	}
}

// MountRoutes registers supplier routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}", h.Update)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.ParseQuery(r.URL.Query(), ParamMap())
	if err != nil {
		http.Error(w, "Invalid listing parameters", http.StatusBadRequest)
		return
	}

	result, err := h.service.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, listquery.ErrInvalidQuery) {
			http.Error(w, "Invalid listing parameters", http.StatusBadRequest)
			return
		}
		h.logger.Error("list suppliers failed", "error", err)
		http.Error(w, "Failed to load suppliers", http.StatusInternalServerError)
		return
	}

	configs, err := FilterConfigs(r.Context(), h.options)
	if err != nil {
		h.logger.Error("load supplier filters failed", "error", err)
		http.Error(w, "Failed to load suppliers", http.StatusInternalServerError)
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("load supplier stats failed", "error", err)
		http.Error(w, "Failed to load suppliers", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/suppliers_list.html", map[string]any{
		"Suppliers":   result.Rows,
		"Pagination":  result.Pagination,
		"Query":       q,
		"QueryString": q.Values(ParamMap()).Encode(),
		"PrevQuery":   q.WithPage(q.Page - 1).Values(ParamMap()).Encode(),
		"NextQuery":   q.WithPage(q.Page + 1).Values(ParamMap()).Encode(),
		"Filters":     configs,
		"Stats":       stats,
	}, http.StatusOK)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	sup, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get supplier failed", "error", err, "id", id)
		http.Error(w, "Supplier not found", http.StatusNotFound)
		return
	}

	h.render(w, r, "pages/supplier_detail.html", map[string]any{
		"Supplier": sup,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	states, err := h.options.ListOptions(r.Context(), options.KindStates)
	if err != nil {
		h.logger.Error("load states failed", "error", err)
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/supplier_form.html", map[string]any{
		"Errors":   map[string]string{},
		"Supplier": nil,
		"States":   states,
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseForm(r)
	if err != nil {
		if errors.Is(err, httpx.ErrValidation) {
			h.renderFormError(w, r, nil, input, err)
			return
		}
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.renderFormError(w, r, nil, input, err)
		return
	}

	h.redirectWithFlash(w, r, "/suppliers/"+strconv.FormatInt(created.ID, 10), "success", "Supplier created successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	sup, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get supplier failed", "error", err, "id", id)
		http.Error(w, "Supplier not found", http.StatusNotFound)
		return
	}

	states, err := h.options.ListOptions(r.Context(), options.KindStates)
	if err != nil {
		h.logger.Error("load states failed", "error", err)
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/supplier_form.html", map[string]any{
		"Errors":   map[string]string{},
		"Supplier": sup,
		"States":   states,
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	input, err := h.parseForm(r)
	if err != nil {
		if errors.Is(err, httpx.ErrValidation) {
			h.renderFormError(w, r, &id, input, err)
			return
		}
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if _, err := h.service.Update(r.Context(), id, input); err != nil {
		h.renderFormError(w, r, &id, input, err)
		return
	}

	h.redirectWithFlash(w, r, "/suppliers/"+strconv.FormatInt(id, 10), "success", "Supplier updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete supplier failed", "error", err, "id", id)
		h.redirectWithFlash(w, r, "/suppliers", "error", deleteErrorMessage(err))
		return
	}

	h.redirectWithFlash(w, r, "/suppliers", "success", "Supplier deleted successfully")
}

func (h *Handler) parseForm(r *http.Request) (Input, error) {
	if err := r.ParseForm(); err != nil {
		return Input{}, err
	}

	var p internalShared.FormParser
	input := Input{
		Name:      r.PostFormValue("name"),
		Street:    r.PostFormValue("street"),
		City:      r.PostFormValue("city"),
		StateID:   p.ID("State", r.PostFormValue("state_id")),
		ZipCode:   r.PostFormValue("zip_code"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
		Phone:     r.PostFormValue("phone"),
	}
	return input, p.Err()
}

func deleteErrorMessage(err error) string {
	if errors.Is(err, httpx.ErrNotFound) {
		return "Supplier not found"
	}
	return "Failed to delete supplier"
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, id *int64, input Input, formErr error) {
	states, err := h.options.ListOptions(r.Context(), options.KindStates)
	if err != nil {
		h.logger.Error("load states failed", "error", err)
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}
	sup := supplierFromInput(input)
	if id != nil {
		sup.ID = *id
	}
	h.render(w, r, "pages/supplier_form.html", map[string]any{
		"Errors":   map[string]string{"general": formErr.Error()},
		"Supplier": sup,
		"States":   states,
	}, http.StatusBadRequest)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := internalShared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *internalShared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Suppliers",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", "error", err, "template", template)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := internalShared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(internalShared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
