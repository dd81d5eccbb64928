package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tarnu/challenge-bets/internal/challenge-service/auth"
	"github.com/tarnu/challenge-bets/internal/challenge-service/repo"
	"github.com/tarnu/challenge-bets/internal/challenge-service/service"
)

func newTestAPI(t *testing.T) (http.Handler, *auth.Verifier) {
	t.Helper()
	ver := auth.NewVerifier("test-secret", "local")
	svc := service.New(zap.NewNop(), repo.NewMemory(), nil, nil)
	return NewServer(zap.NewNop(), svc, ver).Router(), ver
}

func doJSON(t *testing.T, h http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createChallenge(t *testing.T, h http.Handler, userID string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/v1/challenges", userID,
		`{"title":"Run a marathon","description":"42km before December"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out.ID
}

func TestCreateChallengeEndpoint(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/challenges", "u1",
		`{"title":"Run a marathon","description":"42km"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out["status"] != "OPEN" {
		t.Fatalf("expected OPEN, got %v", out["status"])
	}

	// validação: título vazio
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges", "u1", `{"title":"","description":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	// anônimo
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges", "", `{"title":"a","description":"b"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// json inválido
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges", "u1", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rec.Code)
	}
}

func TestPlaceBetEndpoint(t *testing.T) {
	h, _ := newTestAPI(t)
	id := createChallenge(t, h, "u1")

	rec := doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/bets", "u2", `{"prediction":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// aposta duplicada
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/bets", "u2", `{"prediction":false}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	// predição ausente (false explícito é válido, ausência não)
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/bets", "u3", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	// desafio inexistente
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges/00000000-0000-0000-0000-000000000000/bets", "u3", `{"prediction":true}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	// anônimo
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/bets", "", `{"prediction":true}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestFinalizeEndpoint(t *testing.T) {
	h, _ := newTestAPI(t)
	id := createChallenge(t, h, "u1")

	// não-criador
	rec := doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/finalize", "u2", `{"outcome":"COMPLETED"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// resultado inválido
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/finalize", "u1", `{"outcome":"OPEN"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/finalize", "u1", `{"outcome":"COMPLETED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out["status"] != "COMPLETED" {
		t.Fatalf("expected COMPLETED, got %v", out["status"])
	}

	// segunda finalização
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/finalize", "u1", `{"outcome":"FAILED"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	// aposta após fechamento
	rec = doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/bets", "u3", `{"prediction":true}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 betting on finalized challenge, got %d", rec.Code)
	}
}

func TestTallyAndMyBetEndpoints(t *testing.T) {
	h, _ := newTestAPI(t)
	id := createChallenge(t, h, "u1")

	rec := doJSON(t, h, http.MethodGet, "/v1/challenges/"+id+"/tally", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var tally struct {
		SuccessCount int64 `json:"successCount"`
		FailureCount int64 `json:"failureCount"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &tally)
	if tally.SuccessCount != 0 || tally.FailureCount != 0 {
		t.Fatalf("fresh tally must be (0,0), got %+v", tally)
	}

	// sem aposta ainda: corpo null, não erro
	rec = doJSON(t, h, http.MethodGet, "/v1/challenges/"+id+"/bets/me", "u2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "null" {
		t.Fatalf("expected null body, got %s", rec.Body.String())
	}

	doJSON(t, h, http.MethodPost, "/v1/challenges/"+id+"/bets", "u2", `{"prediction":false}`)

	rec = doJSON(t, h, http.MethodGet, "/v1/challenges/"+id+"/bets/me", "u2", "")
	var bet struct {
		Prediction bool   `json:"prediction"`
		Result     string `json:"result"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &bet)
	if bet.Prediction != false || bet.Result != "PENDING" {
		t.Fatalf("unexpected bet: %+v", bet)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/challenges/"+id+"/tally", "", "")
	_ = json.Unmarshal(rec.Body.Bytes(), &tally)
	if tally.SuccessCount != 0 || tally.FailureCount != 1 {
		t.Fatalf("expected (0,1), got %+v", tally)
	}
}

func TestBearerTokenIdentity(t *testing.T) {
	h, ver := newTestAPI(t)

	tok, err := ver.Issue("u9", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/challenges", strings.NewReader(`{"title":"t","description":"d"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with bearer token, got %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out["creatorId"] != "u9" {
		t.Fatalf("expected creatorId u9, got %v", out["creatorId"])
	}
}
