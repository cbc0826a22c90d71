package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type VoteHandler struct {
	budgets ports.BudgetService
	ledger  ports.LedgerService
}

func NewVoteHandler(budgets ports.BudgetService, ledger ports.LedgerService) *VoteHandler {
	return &VoteHandler{
		budgets: budgets,
		ledger:  ledger,
	}
}

func (h *VoteHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	user, _ := currentUser(r)
	view, err := h.budgets.Current(r.Context(), user, sessionID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *VoteHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.budgets.Increment)
}

func (h *VoteHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.budgets.Decrement)
}

type adjustFunc func(ctx context.Context, actor domain.User, sessionID, featureID uuid.UUID) (*ports.BudgetView, error)

func (h *VoteHandler) adjust(w http.ResponseWriter, r *http.Request, fn adjustFunc) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}
	featureID, err := pathID(r, "featureID")
	if err != nil {
		badRequest(w, "invalid feature id")
		return
	}

	user, _ := currentUser(r)
	view, err := fn(r.Context(), user, sessionID, featureID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Submit flushes the budget to the ledger. A failed submission keeps the
// draft so the same allocation can be retried.
func (h *VoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	user, _ := currentUser(r)
	view, err := h.budgets.Submit(r.Context(), user, sessionID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *VoteHandler) Discard(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	user, _ := currentUser(r)
	if err := h.budgets.Discard(r.Context(), user, sessionID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetAll clears every vote of every session.
func (h *VoteHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)
	if err := h.ledger.ResetAll(r.Context(), user); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
