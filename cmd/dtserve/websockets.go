package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketHandler serves Ops over a WebSocket.
//
// Each text message should be a JSON Op.  The reply is the same Op
// with its results (or Err) filled in.
func (s *Service) WebSocketHandler(ctx context.Context) http.HandlerFunc {
	var upgrader = websocket.Upgrader{} // use default options

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		ctl := make(chan bool)
		defer close(ctl)

		go func() {
			select {
			case <-ctx.Done():
				c.Close()
			case <-ctl:
			}
		}()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				s.logf("WebSocket read: %v", err)
				break
			}

			var op Op
			if err := json.Unmarshal(message, &op); err != nil {
				op.Error, op.Err = erred(err)
			} else if err = op.Do(ctx, s); err != nil {
				s.logf("op.Do error %v", err)
				// Conveyed via op.Err.
			}

			js, err := json.Marshal(&op)
			if err != nil {
				log.Printf("WebSocket Marshal error %v", err)
				continue
			}
			if err = c.WriteMessage(mt, js); err != nil {
				log.Println("WebSocket write:", err)
				break
			}
		}
	}
}
