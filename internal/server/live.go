package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/riskpanes/internal/pages"
	"github.com/ziadkadry99/riskpanes/internal/risk"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveRequest is the incoming WebSocket message format.
type liveRequest struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// liveResponse is the outgoing WebSocket message format.
type liveResponse struct {
	Type    string        `json:"type"` // "render", "update" or "error"
	Table   string        `json:"table,omitempty"`
	Summary string        `json:"summary,omitempty"`
	Result  *risk.Summary `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// handleLive keeps one risk page alive for the lifetime of the connection.
// Each toggle message drives the page's table and the re-rendered table and
// summary are sent back.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := s.deps.Pages.Risk(ctx, r.URL.Query())
	if err != nil {
		sendLive(conn, liveResponse{Type: "error", Error: err.Error()})
		return
	}
	defer p.Close()

	slog.Debug("live page opened", "page", p.Runtime.ID, "service", p.Service)
	sendLive(conn, snapshot(p, "render"))

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read", "page", p.Runtime.ID, "error", err)
			}
			slog.Debug("live page closed", "page", p.Runtime.ID)
			return
		}

		var req liveRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sendLive(conn, liveResponse{Type: "error", Error: "invalid message format"})
			continue
		}
		if req.ID == "" {
			sendLive(conn, liveResponse{Type: "error", Error: "id is required"})
			continue
		}
		if err := p.Toggle(req.ID, risk.NormalizeStatus(req.Value)); err != nil {
			sendLive(conn, liveResponse{Type: "error", Error: err.Error()})
			continue
		}
		sendLive(conn, snapshot(p, "update"))
	}
}

func snapshot(p *pages.Page, typ string) liveResponse {
	resp := liveResponse{
		Type:    typ,
		Table:   p.Fragment(pages.TableHostID),
		Summary: p.Fragment(pages.SummaryHostID),
	}
	if sum, ok := p.Summary(); ok {
		resp.Result = &sum
	}
	return resp
}

func sendLive(conn *websocket.Conn, resp liveResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		slog.Warn("websocket write", "error", err)
	}
}
