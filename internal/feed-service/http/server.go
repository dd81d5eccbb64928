package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tarnu/challenge-bets/internal/feed-service/dto"
	"github.com/tarnu/challenge-bets/internal/feed-service/ws"
)

// Reader expõe as consultas de leitura do feed (implementado pelo ReadRepo)
type Reader interface {
	ListChallenges(ctx context.Context) ([]dto.ChallengeSummary, error)
	GetChallenge(ctx context.Context, id string) (*dto.ChallengeDetail, error)
	Tally(ctx context.Context, challengeID string) (dto.Tally, error)
}

// TallyCache guarda tallies recentes com TTL curto (implementado pelo cache Redis)
type TallyCache interface {
	GetTally(ctx context.Context, challengeID string, dst any) (bool, error)
	SetTally(ctx context.Context, challengeID string, v any, ttl time.Duration) error
}

// API expõe os endpoints REST de leitura do feed de desafios
// Utiliza um repositório de leitura (Postgres), cache (Redis) e o hub WebSocket
type API struct {
	ReadRepo Reader     // acesso ao banco de dados
	Cache    TallyCache // cache de tallies
	Hub      *ws.Hub    // feed ao vivo
}

// Router retorna o roteador HTTP com os endpoints de leitura e o WebSocket
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/challenges", a.listChallenges)
	r.Get("/v1/challenges/{id}", a.getChallenge)
	r.Get("/v1/challenges/{id}/tally", a.getTally)
	r.Get("/ws", a.Hub.HandleWS)
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

// listChallenges retorna todos os desafios, mais recentes primeiro
func (a *API) listChallenges(w http.ResponseWriter, r *http.Request) {
	cs, err := a.ReadRepo.ListChallenges(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// getChallenge retorna o detalhe de um desafio
func (a *API) getChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// id fora do formato UUID nunca existe; barrar aqui evita erro de
	// sintaxe na coluna UUID do Postgres
	if uuid.Validate(id) != nil {
		writeNotFound(w)
		return
	}
	c, err := a.ReadRepo.GetChallenge(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// getTally retorna a contagem de apostas por predição, preferencialmente do cache
func (a *API) getTally(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		writeNotFound(w)
		return
	}

	var fromCache dto.Tally
	if ok, _ := a.Cache.GetTally(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	t, err := a.ReadRepo.Tally(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetTally(r.Context(), id, t, 10*time.Second) // salva no cache por 10s
	writeJSON(w, http.StatusOK, t)
}
