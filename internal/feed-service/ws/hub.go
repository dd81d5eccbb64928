package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// client embrulha a conexão com um mutex próprio: o gorilla/websocket proíbe
// escritas concorrentes na mesma conexão, e aqui escrevem duas goroutines
// (o loop de leitura respondendo ping e o subscriber Redis via Broadcast)
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub gerencia conexões WebSocket e assinaturas por desafio
// subs: mapeia challengeID para o conjunto de clientes inscritos
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// challengeID -> set of clients
	subs map[string]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe por desafio e responde a pings
// Cada cliente pode acompanhar múltiplos desafios ao mesmo tempo
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	cl := &client{conn: conn}
	pong, _ := json.Marshal(map[string]string{"type": "pong"})

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.ChallengeID]; !ok {
				h.subs[msg.ChallengeID] = make(map[*client]struct{})
			}
			h.subs[msg.ChallengeID][cl] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.ChallengeID]; ok {
				delete(m, cl)
				if len(m) == 0 {
					delete(h.subs, msg.ChallengeID)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = cl.send(pong)
		}
	}
	// Remove o cliente de todas as assinaturas ao desconectar
	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, cl)
	}
	h.mu.Unlock()
}

// Broadcast envia uma atualização para todos os clientes inscritos no desafio
// O set é copiado sob RLock; iterar o map compartilhado fora do lock correria
// contra subscribe/unsubscribe no HandleWS
func (h *Hub) Broadcast(update ChallengeUpdate) {
	h.mu.RLock()
	set := h.subs[update.ChallengeID]
	targets := make([]*client, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range targets {
		_ = c.send(b)
	}
}
