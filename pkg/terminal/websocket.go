package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
	"github.com/antibyte/retrobasic/pkg/shared"

	"github.com/gorilla/websocket"
)

// Hilfsfunktionen für WebSocket-Konfigurationswerte, siehe [Server] Sektion
func getWriteWait() time.Duration {
	return configuration.GetDuration("Server", "write_wait_timeout", 10*time.Second)
}

func getPongWait() time.Duration {
	return configuration.GetDuration("Server", "pong_timeout", 60*time.Second)
}

func getPingPeriod() time.Duration {
	return (getPongWait() * 9) / 10
}

func getMaxMessageSize() int64 {
	return int64(configuration.GetInt("Server", "max_message_size_kb", 4) * 1024)
}

const (
	sendBufferSize  = 256
	inputBufferSize = 64
)

var (
	errClientClosed = errors.New("client closed")
	errSendTimeout  = errors.New("send timeout")
)

// Client is one websocket connection and the interpreter session behind it.
// It is the session's output writer and its INPUT line reader.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	input     chan string
	handler   *TerminalHandler
	ipAddress string
	sessionID string

	shutdown  chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc

	mu         sync.Mutex
	cancelLine context.CancelFunc
	pending    []byte // output not yet terminated by a newline
}

func newClient(conn *websocket.Conn, h *TerminalHandler, sessionID, ipAddress string, cancel context.CancelFunc) *Client {
	return &Client{
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		input:     make(chan string, inputBufferSize),
		handler:   h,
		ipAddress: ipAddress,
		sessionID: sessionID,
		shutdown:  make(chan struct{}),
		cancel:    cancel,
	}
}

// close stops the session and the write pump. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.shutdown)
	})
}

// sendMessage queues msg for the write pump.
func (c *Client) sendMessage(msg shared.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	timer := time.NewTimer(getWriteWait())
	defer timer.Stop()
	select {
	case c.send <- data:
		return nil
	case <-c.shutdown:
		return errClientClosed
	case <-timer.C:
		logger.TerminalWarn("Send timeout for session %s", c.sessionID)
		return errSendTimeout
	}
}

// Write sends every complete line of p as a text message.
func (c *Client) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.pending = append(c.pending, p...)
	var lines []string
	for {
		i := bytes.IndexByte(c.pending, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimRight(c.pending[:i], "\r")))
		c.pending = c.pending[i+1:]
	}
	c.mu.Unlock()

	for _, line := range lines {
		if err := c.sendMessage(shared.Message{Type: shared.MessageTypeText, Content: line}); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// ReadLine asks the client for an answer and waits for the next line.
func (c *Client) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := c.sendMessage(shared.Message{Type: shared.MessageTypePrompt, PromptSymbol: prompt}); err != nil {
		return "", err
	}
	return c.nextLine(ctx)
}

// nextLine returns the next line the client typed. io.EOF means the
// connection is gone.
func (c *Client) nextLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c.input:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// beginLine derives the context one input line executes under. BREAK from
// the client cancels it.
func (c *Client) beginLine(ctx context.Context) context.Context {
	lineCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelLine = cancel
	c.mu.Unlock()
	return lineCtx
}

func (c *Client) endLine() {
	c.mu.Lock()
	if c.cancelLine != nil {
		c.cancelLine()
		c.cancelLine = nil
	}
	c.mu.Unlock()
}

// interrupt cancels the line being executed, if any.
func (c *Client) interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelLine != nil {
		logger.TerminalDebug("BREAK for session %s", c.sessionID)
		c.cancelLine()
	}
}

// readPump pumpt Nachrichten vom WebSocket in die Eingabe der Session
func (c *Client) readPump() {
	defer func() {
		close(c.input)
		c.handler.cleanupClient(c)
	}()

	c.conn.SetReadLimit(getMaxMessageSize())
	c.conn.SetReadDeadline(time.Now().Add(getPongWait()))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(getPongWait()))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.TerminalWarn("Unexpected close error for client %s: %v", c.ipAddress, err)
			} else {
				logger.TerminalDebug("Connection closed for client %s: %v", c.ipAddress, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		msg, err := decodeClientMessage(data)
		if err != nil {
			logger.TerminalWarn("Rejected message from session %s: %v", c.sessionID, err)
			c.sendMessage(shared.Message{Type: shared.MessageTypeError, Content: err.Error()})
			continue
		}
		if msg.Content == BreakCommand {
			c.interrupt()
			continue
		}

		select {
		case c.input <- msg.Content:
		default:
			c.sendMessage(shared.Message{Type: shared.MessageTypeError, Content: "input queue full"})
		}
	}
}

// writePump pumpt Nachrichten aus dem send-Kanal zum WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(getPingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				logger.TerminalDebug("Write to session %s failed: %v", c.sessionID, err)
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				logger.TerminalError("Failed to send ping to client %s: %v", c.ipAddress, err)
				c.close()
				return
			}
		case <-c.shutdown:
			// Flush what the session wrote before it ended.
			for {
				select {
				case message := <-c.send:
					if c.write(websocket.TextMessage, message) != nil {
						return
					}
					continue
				default:
				}
				break
			}
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(getWriteWait()))
	return c.conn.WriteMessage(messageType, data)
}
