// Package onebot is a minimal OneBot v11 client over a forward
// websocket. It serves two roles: the inbound event feed the serve
// command dispatches user commands from, and the low-level send actions
// the delivery engine falls back to when the host-level send fails.
package onebot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultActionTimeout = 10 * time.Second
	readDeadline         = 60 * time.Second
	pingInterval         = 30 * time.Second
)

type Options struct {
	WSURL             string
	AccessToken       string
	ReconnectInterval time.Duration
	Logger            *slog.Logger
}

// Event is an inbound message event, reduced to what the command
// handlers need.
type Event struct {
	MessageType string // "private" or "group"
	SubType     string
	MessageID   string
	UserID      string
	GroupID     string
	SenderName  string
	Text        string
	Images      []string
	Time        int64
}

type Client struct {
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan json.RawMessage

	echoCounter int64
	events      chan Event

	stopMu  sync.Mutex
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

type actionRequest struct {
	Action string `json:"action"`
	Params any    `json:"params"`
	Echo   string `json:"echo,omitempty"`
}

type actionResponse struct {
	Status  string          `json:"status"`
	RetCode int             `json:"retcode"`
	Data    json.RawMessage `json:"data"`
	Echo    string          `json:"echo"`
}

type rawEvent struct {
	PostType    string          `json:"post_type"`
	MessageType string          `json:"message_type"`
	SubType     string          `json:"sub_type"`
	MessageID   json.RawMessage `json:"message_id"`
	UserID      json.RawMessage `json:"user_id"`
	GroupID     json.RawMessage `json:"group_id"`
	RawMessage  string          `json:"raw_message"`
	Message     json.RawMessage `json:"message"`
	Sender      json.RawMessage `json:"sender"`
	Time        int64           `json:"time"`
	Echo        string          `json:"echo"`
}

type rawSender struct {
	Nickname string `json:"nickname"`
	Card     string `json:"card"`
}

func NewClient(opts Options) (*Client, error) {
	if opts.WSURL == "" {
		return nil, fmt.Errorf("onebot ws url is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		opts:    opts,
		logger:  opts.Logger,
		pending: make(map[string]chan json.RawMessage),
		events:  make(chan Event, 64),
	}, nil
}

// Events is the inbound message feed. It is closed on Stop.
func (c *Client) Events() <-chan Event {
	return c.events
}

func (c *Client) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	if err := c.connect(); err != nil {
		if c.opts.ReconnectInterval <= 0 {
			return fmt.Errorf("onebot connect: %w", err)
		}
		c.logger.Warn("onebot_connect_failed_will_retry", "error", err.Error())
	} else {
		go c.listen(c.current())
	}

	if c.opts.ReconnectInterval > 0 {
		go c.reconnectLoop()
	}
	return nil
}

// Stop cancels the client context, closes the connection and the events
// channel. Pending echo channels are left open; waiters in DoAction wake
// on the cancelled context. The events close is serialized with dispatch
// so a frame read during shutdown is dropped, not sent on a closed
// channel.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.stopMu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.events)
	}
	c.stopMu.Unlock()
}

func (c *Client) connect() error {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	header := map[string][]string{}
	if c.opts.AccessToken != "" {
		header["Authorization"] = []string{"Bearer " + c.opts.AccessToken}
	}
	conn, _, err := dialer.Dial(c.opts.WSURL, header)
	if err != nil {
		return err
	}
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.pinger(conn)
	c.logger.Info("onebot_connected", "ws_url", c.opts.WSURL)
	return nil
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) pinger(conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) reconnectLoop() {
	interval := c.opts.ReconnectInterval
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(interval):
			if c.current() != nil {
				continue
			}
			c.logger.Info("onebot_reconnecting")
			if err := c.connect(); err != nil {
				c.logger.Error("onebot_reconnect_failed", "error", err.Error())
				continue
			}
			go c.listen(c.current())
		}
	}
}

func (c *Client) listen(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			c.logger.Warn("onebot_read_error", "error", err.Error())
			c.mu.Lock()
			if c.conn == conn {
				_ = c.conn.Close()
				c.conn = nil
			}
			c.mu.Unlock()
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

		var raw rawEvent
		if err := json.Unmarshal(message, &raw); err != nil {
			c.logger.Warn("onebot_bad_frame", "error", err.Error())
			continue
		}

		if raw.Echo != "" {
			c.pendingMu.Lock()
			ch, ok := c.pending[raw.Echo]
			c.pendingMu.Unlock()
			if ok {
				select {
				case ch <- message:
				default:
				}
			}
			continue
		}
		if raw.PostType != "message" {
			continue
		}
		c.dispatch(raw)
	}
}

func (c *Client) dispatch(raw rawEvent) {
	text, images := parseMessageContent(raw.Message, raw.RawMessage)
	var sender rawSender
	_ = json.Unmarshal(raw.Sender, &sender)
	name := sender.Card
	if name == "" {
		name = sender.Nickname
	}
	ev := Event{
		MessageType: raw.MessageType,
		SubType:     raw.SubType,
		MessageID:   jsonString(raw.MessageID),
		UserID:      jsonString(raw.UserID),
		GroupID:     jsonString(raw.GroupID),
		SenderName:  name,
		Text:        text,
		Images:      images,
		Time:        raw.Time,
	}
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	if c.stopped {
		return
	}
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("onebot_event_dropped", "message_id", ev.MessageID)
	}
}

// DoAction sends an API action and waits for the echo-matched response.
func (c *Client) DoAction(ctx context.Context, action string, params any, timeout time.Duration) (json.RawMessage, error) {
	conn := c.current()
	if conn == nil {
		return nil, fmt.Errorf("onebot websocket not connected")
	}
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}

	echo := fmt.Sprintf("api_%d_%d", time.Now().UnixNano(), atomic.AddInt64(&c.echoCounter, 1))
	ch := make(chan json.RawMessage, 1)
	c.pendingMu.Lock()
	c.pending[echo] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, echo)
		c.pendingMu.Unlock()
	}()

	data, err := json.Marshal(actionRequest{Action: action, Params: params, Echo: echo})
	if err != nil {
		return nil, fmt.Errorf("marshal onebot action: %w", err)
	}
	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write onebot action: %w", err)
	}

	select {
	case respRaw := <-ch:
		var resp actionResponse
		if err := json.Unmarshal(respRaw, &resp); err != nil {
			return nil, fmt.Errorf("decode onebot response: %w", err)
		}
		if resp.Status == "failed" || resp.RetCode != 0 {
			return nil, fmt.Errorf("onebot action %s failed: retcode=%d", action, resp.RetCode)
		}
		return resp.Data, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("onebot action %s timed out after %v", action, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, fmt.Errorf("onebot client stopped")
	}
}

func (c *Client) SendPrivateMsg(ctx context.Context, userID string, segments []Segment) error {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid onebot user id %q", userID)
	}
	_, err = c.DoAction(ctx, "send_private_msg", map[string]any{
		"user_id": id,
		"message": segments,
	}, 0)
	return err
}

// LoginInfo identifies the bot account behind the endpoint.
type LoginInfo struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
}

func (c *Client) GetLoginInfo(ctx context.Context) (LoginInfo, error) {
	data, err := c.DoAction(ctx, "get_login_info", map[string]any{}, 0)
	if err != nil {
		return LoginInfo{}, err
	}
	var info LoginInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return LoginInfo{}, fmt.Errorf("decode login info: %w", err)
	}
	return info, nil
}

func (c *Client) SendGroupMsg(ctx context.Context, groupID string, segments []Segment) error {
	id, err := strconv.ParseInt(groupID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid onebot group id %q", groupID)
	}
	_, err = c.DoAction(ctx, "send_group_msg", map[string]any{
		"group_id": id,
		"message":  segments,
	}, 0)
	return err
}

// parseMessageContent accepts both wire shapes for the message field: a
// CQ-code string or a segment array.
func parseMessageContent(raw json.RawMessage, fallbackText string) (string, []string) {
	if len(raw) == 0 {
		return fallbackText, nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, nil
	}

	var segments []Segment
	if err := json.Unmarshal(raw, &segments); err != nil {
		return fallbackText, nil
	}
	var text string
	var images []string
	for _, seg := range segments {
		switch seg.Type {
		case "text":
			if t, ok := seg.Data["text"].(string); ok {
				text += t
			}
		case "image":
			if url, ok := seg.Data["url"].(string); ok && url != "" {
				images = append(images, url)
			} else if file, ok := seg.Data["file"].(string); ok && file != "" {
				images = append(images, file)
			}
		}
	}
	return text, images
}

func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n int64
	if json.Unmarshal(raw, &n) == nil {
		return strconv.FormatInt(n, 10)
	}
	return string(raw)
}
