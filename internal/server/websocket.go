package server

import (
	"net/http"
	"time"

	"syshealth/internal/snapshot"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsWriteTimeout = 5 * time.Second

// handleWebSocket отправляет текущий снимок и затем каждый новый тик.
// Хранилище опрашивается с интервалом WSPollInterval
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.streams.Add(1)
	defer s.streams.Done()

	s.logger.Debug("Websocket client connected", zap.String("remote", r.RemoteAddr))

	// клиент ничего не присылает, читаем только чтобы заметить закрытие
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	current := s.reader.Read()
	if err := s.sendSnapshot(conn, current); err != nil {
		return
	}
	last := current.Tick

	ticker := time.NewTicker(s.opts.WSPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			current := s.reader.Read()
			if current.Tick == last {
				continue
			}
			if err := s.sendSnapshot(conn, current); err != nil {
				return
			}
			last = current.Tick
		case <-gone:
			s.logger.Debug("Websocket client disconnected", zap.String("remote", r.RemoteAddr))
			return
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(wsWriteTimeout))
			return
		}
	}
}

func (s *Server) sendSnapshot(conn *websocket.Conn, snap snapshot.Snapshot) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	if err := conn.WriteJSON(snap); err != nil {
		s.logger.Debug("Websocket write failed", zap.Error(err))
		return err
	}
	return nil
}
