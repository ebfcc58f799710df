package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	branchmodels "roster/internal/branch/models"
	"roster/internal/platform/middleware"
	"roster/internal/vendors/models"
	"roster/pkg/document"
	"roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/httputil"
)

const maxBodyBytes = 1 << 20

// Service defines the vendor operations exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, req models.CreateVendorRequest) (*models.ProcessingRecord, error)
	GetProcessing(ctx context.Context, id domain.ProcessingID) (*models.ProcessingRecord, error)
	GetVendor(ctx context.Context, id domain.VendorID) (*models.Vendor, error)
	ListActiveBranches(ctx context.Context) ([]branchmodels.Branch, error)
}

// Handler handles vendor and branch endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new vendor Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the vendor routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/vendors", h.handleSubmit)
	r.Get("/vendors/processing/{id}", h.handleGetProcessing)
	r.Get("/vendors/{id}", h.handleGetVendor)
	r.Get("/branches", h.handleListBranches)
}

type links struct {
	Self   string `json:"self"`
	Vendor string `json:"vendor,omitempty"`
}

type submitResponse struct {
	ProcessingID domain.ProcessingID     `json:"processing_id"`
	Status       models.ProcessingStatus `json:"status"`
	Links        links                   `json:"links"`
}

type processingResponse struct {
	*models.ProcessingRecord
	Links links `json:"links"`
}

type vendorResponse struct {
	ID           domain.VendorID     `json:"id"`
	Registration string              `json:"registration"`
	Name         string              `json:"name"`
	Document     string              `json:"document"`
	DocumentKind document.Kind       `json:"document_kind"`
	ContractType domain.ContractType `json:"contract_type"`
	Email        string              `json:"email"`
	BranchID     domain.BranchID     `json:"branch_id"`
	BirthDate    string              `json:"birth_date,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type branchesResponse struct {
	Branches []branchmodels.Branch `json:"branches"`
}

func processingLink(id domain.ProcessingID) string { return "/vendors/processing/" + id.String() }
func vendorLink(id domain.VendorID) string         { return "/vendors/" + id.String() }

// handleSubmit accepts a vendor-creation request for asynchronous processing.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.CreateVendorRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create vendor request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.service.Submit(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to submit vendor", err)
		return
	}

	w.Header().Set("Location", processingLink(record.ID))
	httputil.WriteJSON(w, http.StatusAccepted, submitResponse{
		ProcessingID: record.ID,
		Status:       record.Status,
		Links:        links{Self: processingLink(record.ID)},
	})
}

func (h *Handler) handleGetProcessing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseProcessingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.GetProcessing(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load processing", err)
		return
	}

	resp := processingResponse{ProcessingRecord: record, Links: links{Self: processingLink(record.ID)}}
	if record.VendorID != nil {
		resp.Links.Vendor = vendorLink(*record.VendorID)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseVendorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	v, err := h.service.GetVendor(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load vendor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVendorResponse(v))
}

func (h *Handler) handleListBranches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branches, err := h.service.ListActiveBranches(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list branches", err)
		return
	}
	if branches == nil {
		branches = []branchmodels.Branch{}
	}
	httputil.WriteJSON(w, http.StatusOK, branchesResponse{Branches: branches})
}

// writeServiceError logs server-side failures at error level and client
// mistakes at warn, then renders err.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, msg, attrs...)
	default:
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func toVendorResponse(v *models.Vendor) vendorResponse {
	resp := vendorResponse{
		ID:           v.ID,
		Registration: v.Registration,
		Name:         v.Name,
		Document:     document.Format(v.Document, v.DocumentKind),
		DocumentKind: v.DocumentKind,
		ContractType: v.ContractType,
		Email:        v.Email,
		BranchID:     v.BranchID,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	if v.BirthDate != nil {
		resp.BirthDate = v.BirthDate.Format(time.DateOnly)
	}
	return resp
}
