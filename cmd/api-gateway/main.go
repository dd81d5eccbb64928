package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/tarnu/challenge-bets/internal/shared/config"
	"github.com/tarnu/challenge-bets/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	challengeURL := os.Getenv("CHALLENGE_URL")
	if challengeURL == "" {
		challengeURL = "http://localhost:8080"
	}
	feedURL := os.Getenv("FEED_URL")
	if feedURL == "" {
		feedURL = "http://localhost:8081"
	}
	challenge := rp(challengeURL)
	feed := rp(feedURL)

	mux := http.NewServeMux()

	// escrita (ex.: /api/v1/challenges/* -> challenge-service)
	mux.Handle("/api/v1/", http.StripPrefix("/api", challenge))

	// leitura + feed ao vivo (ex.: /api/feed/v1/* e /api/feed/ws -> feed-service)
	mux.Handle("/api/feed/", http.StripPrefix("/api/feed", feed))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
