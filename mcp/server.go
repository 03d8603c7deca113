package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ToolHandler executes a tool call. Handlers convert their own domain
// failures into tagged results; a returned error means the call itself could
// not be made (unknown tool, malformed arguments) and surfaces as a JSON-RPC
// error.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// CallObserver receives the outcome of every tool call.
type CallObserver interface {
	ObserveToolCall(tool, outcome string, duration time.Duration)
}

// Server is a tools-only MCP server.
type Server struct {
	info ServerInfo

	tools        map[string]*ToolDefinition
	toolHandlers map[string]ToolHandler
	toolsMu      sync.RWMutex

	observer CallObserver

	logger *zap.Logger
}

// NewServer creates an MCP server.
func NewServer(name, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		info: ServerInfo{
			Name:            name,
			Version:         version,
			ProtocolVersion: ProtocolVersion,
			Capabilities: ServerCapabilities{
				Tools:   true,
				Logging: true,
			},
		},
		tools:        make(map[string]*ToolDefinition),
		toolHandlers: make(map[string]ToolHandler),
		logger:       logger.With(zap.String("component", "mcp_server")),
	}
}

// WithObserver installs a tool-call observer (metrics). Returns the server
// for chaining during wiring.
func (s *Server) WithObserver(obs CallObserver) *Server {
	s.observer = obs
	return s
}

// Info returns the server information sent during initialize.
func (s *Server) Info() ServerInfo {
	return s.info
}

// RegisterTool registers a tool definition with its handler.
func (s *Server) RegisterTool(tool *ToolDefinition, handler ToolHandler) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}
	if handler == nil {
		return fmt.Errorf("tool handler is required")
	}

	s.toolsMu.Lock()
	defer s.toolsMu.Unlock()

	s.tools[tool.Name] = tool
	s.toolHandlers[tool.Name] = handler

	s.logger.Info("tool registered", zap.String("name", tool.Name))

	return nil
}

// ListTools lists all registered tools in name order.
func (s *Server) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	s.toolsMu.RLock()
	defer s.toolsMu.RUnlock()

	result := make([]ToolDefinition, 0, len(s.tools))
	for _, tool := range s.tools {
		result = append(result, *tool)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

// CallTool invokes a registered tool. No call timeout is imposed here; the
// outbound HTTP clients carry their own transport timeouts.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	s.toolsMu.RLock()
	handler, ok := s.toolHandlers[name]
	s.toolsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	s.logger.Debug("calling tool", zap.String("name", name))

	start := time.Now()
	result, err := handler(ctx, args)
	elapsed := time.Since(start)

	if err != nil {
		s.observe(name, "error", elapsed)
		s.logger.Error("tool call failed",
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, err
	}

	s.observe(name, "ok", elapsed)
	s.logger.Debug("tool call succeeded",
		zap.String("name", name),
		zap.Duration("duration", elapsed),
	)

	return result, nil
}

func (s *Server) observe(tool, outcome string, d time.Duration) {
	if s.observer != nil {
		s.observer.ObserveToolCall(tool, outcome, d)
	}
}

// =============================================================================
// Message Dispatcher (JSON-RPC 2.0)
// =============================================================================

// HandleMessage dispatches an incoming JSON-RPC 2.0 request to the
// appropriate server method and returns a JSON-RPC 2.0 response.
// Notifications (messages without an ID) return nil response and nil error.
func (s *Server) HandleMessage(ctx context.Context, msg *Message) (*Message, error) {
	if msg == nil {
		return NewErrorResponse(nil, ErrorCodeInvalidRequest, "empty message", nil), nil
	}

	s.logger.Debug("handling message",
		zap.String("method", msg.Method),
		zap.Any("id", msg.ID),
	)

	// Notifications (no ID) are fire-and-forget; we process but don't respond.
	if msg.ID == nil {
		s.handleNotification(msg)
		return nil, nil
	}

	result, rpcErr := s.dispatch(ctx, msg.Method, msg.Params)
	if rpcErr != nil {
		return &Message{
			JSONRPC: "2.0",
			ID:      msg.ID,
			Error:   rpcErr,
		}, nil
	}

	return NewResponse(msg.ID, result), nil
}

// handleNotification processes notification messages (no response expected).
func (s *Server) handleNotification(msg *Message) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("client initialized notification received")
	default:
		s.logger.Debug("unhandled notification", zap.String("method", msg.Method))
	}
}

// dispatch routes a method call to the corresponding server handler.
func (s *Server) dispatch(ctx context.Context, method string, params map[string]any) (any, *Error) {
	switch method {
	case "initialize":
		return s.handleInitialize(params)
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return s.handleToolsList(ctx)
	case "tools/call":
		return s.handleToolsCall(ctx, params)
	default:
		return nil, &Error{
			Code:    ErrorCodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", method),
		}
	}
}

func (s *Server) handleInitialize(_ map[string]any) (any, *Error) {
	return map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    s.info.Capabilities,
		"serverInfo": map[string]any{
			"name":    s.info.Name,
			"version": s.info.Version,
		},
	}, nil
}

func (s *Server) handleToolsList(ctx context.Context) (any, *Error) {
	tools, err := s.ListTools(ctx)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return map[string]any{"tools": tools}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, params map[string]any) (any, *Error) {
	name, _ := params["name"].(string)
	if name == "" {
		return nil, &Error{Code: ErrorCodeInvalidParams, Message: "missing required parameter: name"}
	}

	// Arguments may be nil for tools with no parameters
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return result, nil
}

// =============================================================================
// Serve — Transport Message Loop
// =============================================================================

// Serve runs the MCP server message loop over the given transport. It
// receives messages, dispatches them via HandleMessage, and sends responses
// back. The loop exits when the context is cancelled or the transport is
// closed.
func (s *Server) Serve(ctx context.Context, transport Transport) error {
	if transport == nil {
		return fmt.Errorf("transport cannot be nil")
	}

	s.logger.Info("MCP server starting",
		zap.String("name", s.info.Name),
		zap.String("version", s.info.Version),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("MCP server stopping: context cancelled")
			return ctx.Err()
		default:
		}

		msg, err := transport.Receive(ctx)
		if err != nil {
			// Context cancellation is a clean shutdown, not an error
			if ctx.Err() != nil {
				s.logger.Info("MCP server stopping: context cancelled")
				return ctx.Err()
			}
			if isClosed(err) {
				s.logger.Info("MCP server stopping: transport closed")
				return nil
			}
			s.logger.Error("transport receive error", zap.Error(err))
			parseErrResp := NewErrorResponse(nil, ErrorCodeParseError, "failed to receive message", nil)
			if sendErr := transport.Send(ctx, parseErrResp); sendErr != nil {
				s.logger.Error("failed to send error response", zap.Error(sendErr))
				return sendErr
			}
			continue
		}

		// Validate JSON-RPC version
		if msg.JSONRPC != "" && msg.JSONRPC != "2.0" {
			resp := NewErrorResponse(msg.ID, ErrorCodeInvalidRequest, "unsupported JSON-RPC version", nil)
			if sendErr := transport.Send(ctx, resp); sendErr != nil {
				s.logger.Error("failed to send error response", zap.Error(sendErr))
			}
			continue
		}

		resp, handleErr := s.HandleMessage(ctx, msg)
		if handleErr != nil {
			s.logger.Error("HandleMessage returned unexpected error", zap.Error(handleErr))
			continue
		}

		// Notifications produce no response
		if resp == nil {
			continue
		}

		if sendErr := transport.Send(ctx, resp); sendErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("failed to send response", zap.Error(sendErr))
		}
	}
}
