package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/wallpaper-align/internal/imaging"
	"github.com/ironsheep/wallpaper-align/internal/logging"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// protocolVersion is the MCP revision the server speaks.
const protocolVersion = "2024-11-05"

// maxRequestSize bounds a single request line.
const maxRequestSize = 1024 * 1024

// Server answers MCP tool requests for the calibration and profile steps.
// Decoded images are shared between calls through its cache.
type Server struct {
	cache   *imaging.ImageCache
	version string
	methods map[string]methodHandler
}

// methodHandler answers one JSON-RPC method. A nil response sends nothing.
type methodHandler func(req *MCPRequest) *MCPResponse

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports whether the sender expects no response.
func (r *MCPRequest) isNotification() bool {
	return r.ID == nil
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server reporting the given version in its initialize reply.
func New(version string) *Server {
	s := &Server{
		cache:   imaging.NewImageCache(),
		version: version,
	}
	s.methods = map[string]methodHandler{
		"initialize": s.handleInitialize,
		"ping":       s.handlePing,
		"tools/list": s.handleToolsList,
		"tools/call": s.handleToolsCall,
	}
	return s
}

// Run serves stdin/stdout until stdin closes.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve processes newline-delimited JSON-RPC requests from r until EOF,
// writing one response line to w per request that expects one. Lines that
// are not JSON get a parse error reply with a null id.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			logging.Printf("Failed to parse request: %v", err)
			resp = s.errorResponse(nil, codeParseError, "Parse error", err.Error())
		} else {
			logging.Debugf("request %v: %s", req.ID, req.Method)
			resp = s.handleRequest(&req)
		}

		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	return nil
}

// handleRequest routes a request through the method table. Notifications,
// known or not, never get a reply.
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	if req.isNotification() {
		logging.Debugf("notification %s ignored", req.Method)
		return nil
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return s.errorResponse(req.ID, codeInvalidRequest, "Invalid request",
			fmt.Sprintf("jsonrpc %q, method %q", req.JSONRPC, req.Method))
	}

	handler, ok := s.methods[req.Method]
	if !ok {
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
	return handler(req)
}

func (s *Server) handlePing(req *MCPRequest) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
}

// handleInitialize advertises the tools capability and the build version.
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "wallpaper-align",
				"version": s.version,
			},
		},
	}
}
