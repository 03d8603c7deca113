package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"
)

// ErrTransportClosed is returned by Receive once the transport is closed.
var ErrTransportClosed = errors.New("mcp: transport closed")

// Transport is the MCP transport layer.
type Transport interface {
	// Send sends a message.
	Send(ctx context.Context, msg *Message) error
	// Receive receives a message (blocking).
	Receive(ctx context.Context) (*Message, error)
	// Close closes the transport.
	Close() error
}

// isClosed reports whether a receive error means the peer is gone and the
// serve loop should end cleanly.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, ErrTransportClosed)
}

// ---------------------------------------------------------------------------
// StdioTransport — stdin/stdout with Content-Length framing
// ---------------------------------------------------------------------------

// StdioTransport carries MCP messages over a reader/writer pair using the
// Content-Length header framing the protocol uses on stdio.
type StdioTransport struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
	logger  *zap.Logger
}

// NewStdioTransport creates a stdio transport.
func NewStdioTransport(reader io.Reader, writer io.Writer, logger *zap.Logger) *StdioTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StdioTransport{
		reader: bufio.NewReader(reader),
		writer: writer,
		logger: logger,
	}
}

// Send writes a message as a Content-Length header plus JSON body.
func (t *StdioTransport) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := t.writer.Write([]byte(header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := t.writer.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// Receive reads the Content-Length header and the JSON body that follows.
func (t *StdioTransport) Receive(ctx context.Context) (*Message, error) {
	var contentLength int
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err == nil {
			continue
		}
	}

	if contentLength <= 0 {
		return nil, fmt.Errorf("missing or invalid Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Close is a no-op for stdio.
func (t *StdioTransport) Close() error {
	return nil
}
