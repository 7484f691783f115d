package feed

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/fasthttp/websocket"
)

// WebsocketDialer dials <base>/ws/<thread key>?client_id=<id>.
type WebsocketDialer struct {
	baseURL string
	dialer  *websocket.Dialer
}

func NewWebsocketDialer(baseURL string) *WebsocketDialer {
	return &WebsocketDialer{
		baseURL: strings.TrimRight(baseURL, "/"),
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

func (d *WebsocketDialer) Endpoint(threadKey, clientID string) string {
	return d.baseURL + "/ws/" + url.PathEscape(threadKey) + "?client_id=" + url.QueryEscape(clientID)
}

func (d *WebsocketDialer) Dial(ctx context.Context, threadKey, clientID string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, d.Endpoint(threadKey, clientID), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

// ReadMessage skips control and binary frames.
func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt == websocket.TextMessage {
			return data, nil
		}
	}
}

func (c *wsConn) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
