package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type FeatureHandler struct {
	catalog ports.CatalogService
	ledger  ports.LedgerService
}

func NewFeatureHandler(catalog ports.CatalogService, ledger ports.LedgerService) *FeatureHandler {
	return &FeatureHandler{
		catalog: catalog,
		ledger:  ledger,
	}
}

type featureRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Epic        *string `json:"epic"`
}

// workItemRequest is the shape the external tracker hands over.
type workItemRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	URL         string `json:"url"`
}

type importRequest struct {
	Items []workItemRequest `json:"items"`
}

func (h *FeatureHandler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	user, _ := currentUser(r)
	features, err := h.catalog.ListBySession(r.Context(), user, sessionID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, features)
}

func (h *FeatureHandler) CreateFeature(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	var req featureRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, _ := currentUser(r)
	feature, err := h.catalog.Create(r.Context(), user, ports.CreateFeatureInput{
		SessionID:   sessionID,
		Title:       req.Title,
		Description: req.Description,
		Epic:        req.Epic,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, feature)
}

// ImportFeatures merges a batch of work items into the session catalog.
// A request without items pulls the batch from the configured tracker.
func (h *FeatureHandler) ImportFeatures(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	var req importRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body")
		return
	}

	user, _ := currentUser(r)
	var features []domain.FeatureWithVotes
	if req.Items == nil {
		features, err = h.catalog.ImportFromTracker(r.Context(), user, sessionID)
	} else {
		batch := make([]domain.ExternalFeature, 0, len(req.Items))
		for _, item := range req.Items {
			batch = append(batch, domain.ExternalFeature{
				ExternalID:  item.ID,
				Title:       item.Title,
				Description: item.Description,
				Epic:        domain.EpicFromTags(item.Tags),
				URL:         item.URL,
			})
		}
		features, err = h.catalog.Import(r.Context(), user, sessionID, batch)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, features)
}

func (h *FeatureHandler) GetFeature(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid feature id")
		return
	}

	user, _ := currentUser(r)
	feature, err := h.catalog.Get(r.Context(), user, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feature)
}

func (h *FeatureHandler) UpdateFeature(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid feature id")
		return
	}

	var req featureRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, _ := currentUser(r)
	feature, err := h.catalog.Update(r.Context(), user, id, ports.UpdateFeatureInput{
		Title:       req.Title,
		Description: req.Description,
		Epic:        req.Epic,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feature)
}

func (h *FeatureHandler) DeleteFeature(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid feature id")
		return
	}

	user, _ := currentUser(r)
	if err := h.catalog.Delete(r.Context(), user, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FeatureHandler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid feature id")
		return
	}

	user, _ := currentUser(r)
	if err := h.ledger.ResetFeature(r.Context(), user, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
