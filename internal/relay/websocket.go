package relay

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"runtime.link/api/xray"
)

const writeTimeout = time.Second

// Dial connects to a renderer listening for websocket connections at url. Every
// notification is sent as a JSON [Message] in its own text frame. Failures after
// the connection is established are passed to raise, which may be nil.
func Dial(ctx context.Context, url string, raise func(error)) (*Relay, error) {
	sock, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, xray.New(err)
	}
	// control frames are only processed while reading.
	go func() {
		for {
			if _, _, err := sock.ReadMessage(); err != nil {
				return
			}
		}
	}()
	send := func(msg Message) error {
		if err := sock.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return xray.New(err)
		}
		return wsSend(sock, msg)
	}
	closer := func() error {
		sock.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
		return sock.Close()
	}
	return newRelay(buffered, send, closer, raise), nil
}

func wsSend(sock *websocket.Conn, data any) error {
	message, err := json.Marshal(data)
	if err != nil {
		return xray.New(err)
	}
	if err := sock.WriteMessage(websocket.TextMessage, message); err != nil {
		return xray.New(err)
	}
	return nil
}

// Recv reads the next [Message] from a websocket.
func Recv(sock *websocket.Conn) (Message, error) {
	mtype, data, err := sock.ReadMessage()
	if err != nil {
		return Message{}, xray.New(err)
	}
	if mtype != websocket.TextMessage {
		return Message{}, xray.New(errors.New("unexpected websocket message type"))
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, xray.New(err)
	}
	return msg, nil
}
