package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionService
	results  ports.ResultsService
	ledger   ports.LedgerService
}

func NewSessionHandler(sessions ports.SessionService, results ports.ResultsService, ledger ports.LedgerService) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		results:  results,
		ledger:   ledger,
	}
}

type sessionRequest struct {
	Title        string    `json:"title"`
	Goal         string    `json:"goal"`
	VotesPerUser int       `json:"votes_per_user"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

func (req sessionRequest) input(productID uuid.UUID) ports.SessionInput {
	return ports.SessionInput{
		ProductID:    productID,
		Title:        req.Title,
		Goal:         req.Goal,
		VotesPerUser: req.VotesPerUser,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	user, _ := currentUser(r)
	session, err := h.sessions.Get(r.Context(), user, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, _ := currentUser(r)
	session, err := h.sessions.Update(r.Context(), user, id, req.input(uuid.Nil))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	user, _ := currentUser(r)
	results, err := h.results.SessionResults(r.Context(), user, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// ResetVotes clears every vote cast in the session.
func (h *SessionHandler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid session id")
		return
	}

	user, _ := currentUser(r)
	if err := h.ledger.ResetSession(r.Context(), user, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
