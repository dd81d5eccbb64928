package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tarnu/challenge-bets/internal/challenge-service/auth"
	"github.com/tarnu/challenge-bets/internal/challenge-service/domain"
	"github.com/tarnu/challenge-bets/internal/challenge-service/dto"
	"github.com/tarnu/challenge-bets/internal/challenge-service/service"
)

// Server expõe a API REST do serviço de ciclo de vida
// Callbacks On* alimentam métricas Prometheus registradas no main
type Server struct {
	log *zap.Logger
	svc *service.Service
	ver *auth.Verifier

	OnChallengeCreated func()
	OnBetPlaced        func()
	OnBetRejected      func(reason string)
	OnFinalized        func(outcome string)
}

func NewServer(log *zap.Logger, svc *service.Service, ver *auth.Verifier) *Server {
	return &Server{log: log, svc: svc, ver: ver}
}

// Router retorna o roteador HTTP com os endpoints da API
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.ver.Middleware)

	r.Post("/v1/challenges", s.createChallenge)
	r.Get("/v1/challenges", s.listChallenges)
	r.Get("/v1/challenges/{id}", s.getChallenge)
	r.Post("/v1/challenges/{id}/bets", s.placeBet)
	r.Get("/v1/challenges/{id}/bets/me", s.myBet)
	r.Post("/v1/challenges/{id}/finalize", s.finalize)
	r.Get("/v1/challenges/{id}/tally", s.tally)
	return r
}

func (s *Server) createChallenge(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	c, err := s.svc.CreateChallenge(r.Context(), auth.UserIDFrom(r.Context()), req.Title, req.Description, req.MediaRef)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if s.OnChallengeCreated != nil {
		s.OnChallengeCreated()
	}
	writeJSON(w, http.StatusCreated, dto.FromChallenge(c))
}

func (s *Server) listChallenges(w http.ResponseWriter, r *http.Request) {
	cs, err := s.svc.ListChallenges(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make([]dto.ChallengeResponse, 0, len(cs))
	for i := range cs {
		out = append(out, dto.FromChallenge(&cs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getChallenge(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.GetChallenge(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromChallenge(c))
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Prediction == nil {
		writeError(w, http.StatusBadRequest, "prediction required")
		return
	}

	b, err := s.svc.PlaceBet(r.Context(), chi.URLParam(r, "id"), auth.UserIDFrom(r.Context()), *req.Prediction)
	if err != nil {
		if s.OnBetRejected != nil {
			s.OnBetRejected(rejectReason(err))
		}
		s.writeDomainError(w, err)
		return
	}
	if s.OnBetPlaced != nil {
		s.OnBetPlaced()
	}
	writeJSON(w, http.StatusCreated, dto.FromBet(b))
}

func (s *Server) myBet(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.UserBet(r.Context(), chi.URLParam(r, "id"), auth.UserIDFrom(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if b == nil {
		// sem aposta ainda: resposta normal, não erro
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(b))
}

func (s *Server) finalize(w http.ResponseWriter, r *http.Request) {
	var req dto.FinalizeChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	outcome, ok := domain.ParseOutcome(req.Outcome)
	if !ok {
		writeError(w, http.StatusBadRequest, "outcome must be COMPLETED or FAILED")
		return
	}

	c, err := s.svc.FinalizeChallenge(r.Context(), chi.URLParam(r, "id"), auth.UserIDFrom(r.Context()), outcome)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if s.OnFinalized != nil {
		s.OnFinalized(string(c.Status))
	}
	writeJSON(w, http.StatusOK, dto.FromChallenge(c))
}

func (s *Server) tally(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.svc.Tally(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TallyResponse{
		ChallengeID:  id,
		SuccessCount: t.SuccessCount,
		FailureCount: t.FailureCount,
	})
}

// writeDomainError mapeia os erros sentinela do domínio para status HTTP
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrChallengeClosed),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrDuplicateBet):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrChallengeClosed):
		return "closed"
	case errors.Is(err, domain.ErrDuplicateBet):
		return "duplicate"
	default:
		return "internal"
	}
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
