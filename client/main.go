package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// send writes one JSON event frame to the server.
func send(c *websocket.Conn, name string, data interface{}) error {
	payload, err := json.Marshal(event{Event: name, Data: data})
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, payload)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop: track ids from server responses so commands can reference them.
	var roomID, gameID string
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- RECV: %s", string(message))

			var ev struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(message, &ev); err != nil {
				continue
			}
			switch ev.Event {
			case "room:created", "room:joined":
				var data struct {
					RoomID string `json:"roomId"`
					Room   struct {
						RoomID string `json:"roomId"`
					} `json:"room"`
				}
				json.Unmarshal(ev.Data, &data)
				if data.RoomID != "" {
					roomID = data.RoomID
				} else {
					roomID = data.Room.RoomID
				}
			case "game:started":
				var data struct {
					GameID string `json:"gameId"`
				}
				json.Unmarshal(ev.Data, &data)
				gameID = data.GameID
			}
		}
	}()

	log.Println("Commands: create <nick> | join <roomId> <nick> | ready | start | answer <text> | next")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				nick := "player"
				if len(fields) > 1 {
					nick = fields[1]
				}
				err = send(c, "room:create", map[string]interface{}{
					"nickname": nick, "difficulty": "easy",
				})
			case "join":
				if len(fields) < 3 {
					log.Println("usage: join <roomId> <nick>")
					continue
				}
				err = send(c, "room:join", map[string]interface{}{
					"roomId": fields[1], "nickname": fields[2],
				})
			case "ready":
				err = send(c, "room:ready", map[string]interface{}{
					"roomId": roomID, "isReady": true,
				})
			case "start":
				err = send(c, "game:start", map[string]interface{}{"roomId": roomID})
			case "answer":
				if len(fields) < 2 {
					log.Println("usage: answer <text>")
					continue
				}
				err = send(c, "game:answer", map[string]interface{}{
					"gameId":    gameID,
					"answer":    strings.Join(fields[1:], " "),
					"timeSpent": 5.0,
				})
			case "next":
				err = send(c, "game:next", map[string]interface{}{"gameId": gameID})
			default:
				log.Printf("unknown command %q", fields[0])
				continue
			}

			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
