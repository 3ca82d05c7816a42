package service

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/timewise-app/support-be/types"
)

// WebSocketService serves the interactive ask channel. Each ask is
// acknowledged with a processing message before the pipeline runs, so
// clients can show progress while retrieval and generation happen.
type WebSocketService struct {
	support  *SupportService
	upgrader websocket.Upgrader
}

func NewWebSocketService(support *SupportService) *WebSocketService {
	return &WebSocketService{
		support: support,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleAsk(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx := r.Context()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Println("Unmarshal error:", err)
			s.writeError(conn, "invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketPing:
			if err := conn.WriteJSON(types.WebsocketResponse{Type: types.TypeWebsocketPong}); err != nil {
				log.Println("Write error:", err)
			}
		case types.TypeWebsocketAsk:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				log.Println("Marshal error:", err)
				s.writeError(conn, "invalid payload")
				continue
			}
			var ask types.AskRequest
			if err := json.Unmarshal(payloadBytes, &ask); err != nil {
				log.Println("Unmarshal error:", err)
				s.writeError(conn, "invalid payload")
				continue
			}

			processing := types.WebsocketResponse{
				Type:    types.TypeWebsocketProcessing,
				Payload: types.WebsocketProcessingPayload{Message: "Searching Timewise documentation..."},
			}
			if err := conn.WriteJSON(processing); err != nil {
				log.Println("Write error:", err)
				continue
			}

			resp, err := s.support.HandleQuery(ctx, types.SupportQuery{
				Text:       ask.Query,
				Role:       ask.Role,
				ModuleHint: ask.ModuleHint,
			})
			if err != nil {
				log.Println("Query error:", err)
				s.writeError(conn, "support system temporarily unavailable")
				continue
			}
			answer := types.WebsocketResponse{
				Type:    types.TypeWebsocketAnswer,
				Payload: resp,
			}
			if err := conn.WriteJSON(answer); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type:", req.Type)
			s.writeError(conn, "unknown message type")
		}
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, msg string) {
	res := types.WebsocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebsocketErrorPayload{Error: msg},
	}
	if err := conn.WriteJSON(res); err != nil {
		log.Println("Write error:", err)
	}
}
