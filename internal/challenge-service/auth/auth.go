package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

// Verifier resolve a identidade opaca do usuário a partir da requisição
// Token bearer HS256 com claim "sub"; no ambiente local aceita também o
// header X-User-ID para facilitar desenvolvimento sem emissor de token
type Verifier struct {
	secret      []byte
	allowHeader bool
}

func NewVerifier(secret string, env string) *Verifier {
	return &Verifier{secret: []byte(secret), allowHeader: env == "local"}
}

// UserID extrai o id do usuário da requisição; "" significa não autenticado
func (v *Verifier) UserID(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw := strings.TrimPrefix(h, "Bearer ")
		var claims jwt.RegisteredClaims
		tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return v.secret, nil
		})
		if err == nil && tok.Valid && claims.Subject != "" {
			return claims.Subject
		}
		return ""
	}
	if v.allowHeader {
		return r.Header.Get("X-User-ID")
	}
	return ""
}

// Issue emite um token para o id informado; usado pela CLI local e testes
func (v *Verifier) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Middleware injeta o id do usuário no contexto da requisição
// Não rejeita requisições anônimas: cada operação decide se exige identidade
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := v.UserID(r); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFrom retorna o id do usuário do contexto, ou "" se anônimo
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
