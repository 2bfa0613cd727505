package common

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WSConn websocket 连接，写操作加锁，可并发调用
type WSConn struct {
	conn   *websocket.Conn
	writeM sync.Mutex
	logger zerolog.Logger
}

// DialWS 建立 websocket 连接
func DialWS(ctx context.Context, wsURL, proxyURL string, logger zerolog.Logger) (*WSConn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		Proxy:            http.ProxyFromEnvironment,
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		dialer.Proxy = http.ProxyURL(u)
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", wsURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	logger.Debug().Str("url", wsURL).Msg("websocket connected")
	return &WSConn{conn: conn, logger: logger}, nil
}

// WriteJSON 发送 JSON 消息
func (c *WSConn) WriteJSON(v interface{}) error {
	c.writeM.Lock()
	defer c.writeM.Unlock()
	return c.conn.WriteJSON(v)
}

// ReadMessage 读取一条数据消息，ping/pong 由底层自动处理
func (c *WSConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// SetReadDeadline 设置读超时
func (c *WSConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Close 发送关闭帧并断开连接
func (c *WSConn) Close() error {
	c.writeM.Lock()
	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeM.Unlock()
	if closeErr := c.conn.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	c.logger.Debug().Msg("websocket closed")
	return err
}

// IsClosed 判断错误是否为正常关闭
func IsClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
