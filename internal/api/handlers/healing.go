package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/odontoprint/gapheal/internal/api"
	"github.com/odontoprint/gapheal/internal/api/middleware"
	"github.com/odontoprint/gapheal/internal/domain"
	"github.com/odontoprint/gapheal/internal/service"
)

type HealingRunner interface {
	Heal(ctx context.Context) (*service.HealReport, error)
}

type ReviewService interface {
	ListDrafts(ctx context.Context) ([]*domain.Draft, error)
	Approve(ctx context.Context, input service.ApproveInput) (*service.ApproveOutput, error)
	Reject(ctx context.Context, draftID, reviewedBy string) error
}

// HealingHandler exposes the gap-healing actions: generate, list,
// approve, reject.
type HealingHandler struct {
	healer HealingRunner
	review ReviewService
}

func NewHealingHandler(healer HealingRunner, review ReviewService) *HealingHandler {
	return &HealingHandler{healer: healer, review: review}
}

type ApproveDraftRequest struct {
	Title      string       `json:"title"`
	Excerpt    string       `json:"excerpt"`
	FAQs       []domain.FAQ `json:"faqs"`
	Keywords   []string     `json:"keywords"`
	CategoryID *string      `json:"category_id"`
}

type ApproveDraftResponse struct {
	Success   bool   `json:"success"`
	ContentID string `json:"content_id"`
	Slug      string `json:"slug"`
}

type RejectDraftResponse struct {
	Success bool `json:"success"`
}

type DraftResponse struct {
	ID                 string       `json:"id"`
	Title              string       `json:"title"`
	Excerpt            string       `json:"excerpt"`
	FAQs               []domain.FAQ `json:"faqs"`
	Keywords           []string     `json:"keywords"`
	GapIDs             []string     `json:"gap_ids"`
	SourceQuestions    []string     `json:"source_questions"`
	Status             string       `json:"status"`
	CategoryID         *string      `json:"category_id,omitempty"`
	PublishedContentID *string      `json:"published_content_id,omitempty"`
	CreatedAt          string       `json:"created_at"`
	ReviewedAt         string       `json:"reviewed_at,omitempty"`
	ReviewedBy         string       `json:"reviewed_by,omitempty"`
}

func draftToResponse(d *domain.Draft) *DraftResponse {
	resp := &DraftResponse{
		ID:                 d.ID,
		Title:              d.Title,
		Excerpt:            d.Excerpt,
		FAQs:               d.FAQs,
		Keywords:           d.Keywords,
		GapIDs:             d.GapIDs,
		SourceQuestions:    d.SourceQuestions,
		Status:             string(d.Status),
		CategoryID:         d.CategoryID,
		PublishedContentID: d.PublishedContentID,
		CreatedAt:          d.CreatedAt.Format(time.RFC3339),
		ReviewedBy:         d.ReviewedBy,
	}
	if d.ReviewedAt != nil {
		resp.ReviewedAt = d.ReviewedAt.Format(time.RFC3339)
	}
	return resp
}

// Generate triggers one heal run and returns its report.
func (h *HealingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	report, err := h.healer.Heal(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, report)
}

// List returns all drafts, most recent first.
func (h *HealingHandler) List(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.review.ListDrafts(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DraftResponse, 0, len(drafts))
	for _, d := range drafts {
		responses = append(responses, draftToResponse(d))
	}

	api.Success(w, http.StatusOK, responses)
}

// Approve publishes a draft, with optional field overrides.
func (h *HealingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "draft_id is required")
		return
	}

	var req ApproveDraftRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	input := service.ApproveInput{
		DraftID:    id,
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		FAQs:       req.FAQs,
		Keywords:   req.Keywords,
		CategoryID: req.CategoryID,
		ReviewedBy: reviewerName(r),
	}

	output, err := h.review.Approve(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ApproveDraftResponse{
		Success:   true,
		ContentID: output.ContentID,
		Slug:      output.Slug,
	})
}

// Reject marks a draft rejected.
func (h *HealingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "draft_id is required")
		return
	}

	if err := h.review.Reject(r.Context(), id, reviewerName(r)); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, RejectDraftResponse{Success: true})
}

func reviewerName(r *http.Request) string {
	if actor, ok := middleware.GetActor(r.Context()); ok {
		return actor.Name
	}
	return ""
}
