package orders

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

const dateLayout = "2006-01-02"

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

// MountRoutes registers purchase order routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}", h.Update)
	r.Post("/{id}/cancel", h.Cancel)
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
		h.logger.Error("list orders failed", "error", err)
		http.Error(w, "Failed to load purchase orders", http.StatusInternalServerError)
		return
	}

	configs, err := FilterConfigs(r.Context(), h.options)
	if err != nil {
		h.logger.Error("load order filters failed", "error", err)
		http.Error(w, "Failed to load purchase orders", http.StatusInternalServerError)
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("load order stats failed", "error", err)
		http.Error(w, "Failed to load purchase orders", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/orders_list.html", map[string]any{
		"Orders":      result.Rows,
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
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get order failed", "error", err, "id", id)
		http.Error(w, "Purchase order not found", http.StatusNotFound)
		return
	}

	h.render(w, r, "pages/order_detail.html", map[string]any{
		"Order": detail,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	refs, err := h.referenceData(r)
	if err != nil {
		h.logger.Error("load order form options failed", "error", err)
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}
	refs["Errors"] = map[string]string{}
	refs["Order"] = nil
	h.render(w, r, "pages/order_form.html", refs, http.StatusOK)
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

	id, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.renderFormError(w, r, nil, input, err)
		return
	}

	h.redirectWithFlash(w, r, "/purchase-orders/"+strconv.FormatInt(id, 10), "success", "Purchase order created successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get order failed", "error", err, "id", id)
		http.Error(w, "Purchase order not found", http.StatusNotFound)
		return
	}

	refs, err := h.referenceData(r)
	if err != nil {
		h.logger.Error("load order form options failed", "error", err)
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}
	refs["Errors"] = map[string]string{}
	refs["Order"] = detail
	h.render(w, r, "pages/order_form.html", refs, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
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

	if err := h.service.Edit(r.Context(), id, input); err != nil {
		h.renderFormError(w, r, &id, input, err)
		return
	}

	h.redirectWithFlash(w, r, "/purchase-orders/"+strconv.FormatInt(id, 10), "success", "Purchase order updated successfully")
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Cancel(r.Context(), id); err != nil {
		h.logger.Error("cancel order failed", "error", err, "id", id)
		h.redirectWithFlash(w, r, "/purchase-orders", "error", cancelErrorMessage(err))
		return
	}

	h.redirectWithFlash(w, r, "/purchase-orders", "success", "Purchase order cancelled")
}

func (h *Handler) parseForm(r *http.Request) (Input, error) {
	if err := r.ParseForm(); err != nil {
		return Input{}, err
	}

	var p internalShared.FormParser
	input := Input{
		SupplierID:           p.ID("Supplier", r.PostFormValue("supplier_id")),
		PriorityID:           Priority(p.ID("Priority", r.PostFormValue("priority_id"))),
		OrderDate:            p.Date("Order date", dateLayout, r.PostFormValue("order_date")),
		ExpectedDeliveryDate: p.Date("Expected delivery date", dateLayout, r.PostFormValue("expected_delivery_date")),
	}

	itemIDs := r.PostForm["item_id"]
	quantities := r.PostForm["quantity"]
	prices := r.PostForm["purchase_price"]

	for i := range itemIDs {
		// Blank rows come from unused line slots on the form.
		if itemIDs[i] == "" {
			continue
		}
		line := LineInput{ItemID: p.ID("Line item", itemIDs[i])}
		if i < len(quantities) {
			line.Quantity = p.Int("Line quantity", quantities[i])
		}
		if i < len(prices) {
			line.PurchasePrice = p.Float("Line price", prices[i])
		}
		input.Lines = append(input.Lines, line)
	}

	return input, p.Err()
}

func cancelErrorMessage(err error) string {
	switch {
	case errors.Is(err, httpx.ErrNotFound):
		return "Purchase order not found"
	case errors.Is(err, httpx.ErrValidation):
		return "This order can no longer be cancelled"
	default:
		return "Failed to cancel purchase order"
	}
}

func (h *Handler) referenceData(r *http.Request) (map[string]any, error) {
	sups, err := h.options.ListOptions(r.Context(), options.KindSuppliers)
	if err != nil {
		return nil, err
	}
	priorities, err := h.options.ListOptions(r.Context(), options.KindOrderPriorities)
	if err != nil {
		return nil, err
	}
	its, err := h.options.ListOptions(r.Context(), options.KindItems)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"Suppliers":  sups,
		"Priorities": priorities,
		"Items":      its,
	}, nil
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, id *int64, input Input, formErr error) {
	refs, err := h.referenceData(r)
	if err != nil {
		h.logger.Error("load order form options failed", "error", err)
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}
	detail := Detail{Order: orderFromInput(input), Lines: linesFromInput(input.Lines)}
	if id != nil {
		detail.ID = *id
	}
	refs["Errors"] = map[string]string{"general": formErr.Error()}
	refs["Order"] = detail
	h.render(w, r, "pages/order_form.html", refs, http.StatusBadRequest)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := internalShared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *internalShared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Purchase Orders",
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
