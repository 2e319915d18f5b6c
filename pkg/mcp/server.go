// Package mcp serves the advisor as Model Context Protocol tools over
// stdio, one JSON-RPC 2.0 message per line.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pario-ai/advisor/pkg/advisor"
	"github.com/pario-ai/advisor/pkg/session"
)

// Server is a stdio MCP server. All tool calls share one consultation
// session, so the conversation log spans the whole connection.
type Server struct {
	advisor *advisor.Advisor
	session *session.Context
	version string
}

// New creates an MCP server over a and sess.
func New(a *advisor.Advisor, sess *session.Context, version string) *Server {
	return &Server{advisor: a, session: sess, version: version}
}

// Run reads requests from r and writes responses to w until r is exhausted
// or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(w, rpcError(nil, CodeParseError, "parse error"))
			continue
		}
		if req.JSONRPC != jsonrpcVersion {
			s.write(w, rpcError(req.ID, CodeInvalidRequest, "jsonrpc must be 2.0"))
			continue
		}

		resp := s.dispatch(ctx, &req)
		if resp != nil && !req.IsNotification() {
			s.write(w, resp)
		}
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return result(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: "advisor", Version: s.version},
			Capabilities:    Capabilities{Tools: &ToolsCapability{}},
			Instructions:    "Micro-insurance advisor for Indian government schemes. Tool calls share one consultation session.",
		})
	case "notifications/initialized":
		return nil
	case "ping":
		return result(req.ID, map[string]any{})
	case "tools/list":
		return result(req.ID, ToolsListResult{Tools: allTools})
	case "tools/call":
		return s.callTool(ctx, req)
	default:
		return rpcError(req.ID, CodeMethodNotFound, fmt.Sprintf("unknown method: %s", req.Method))
	}
}

func (s *Server) callTool(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return rpcError(req.ID, CodeInvalidParams, "invalid params")
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return result(req.ID, errorResult(fmt.Sprintf("unknown tool: %s", params.Name)))
	}
	zap.L().Debug("mcp tool call", zap.String("tool", params.Name))
	return result(req.ID, handler(ctx, s, params.Arguments))
}

func (s *Server) write(w io.Writer, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		zap.L().Error("mcp: marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		zap.L().Error("mcp: write response", zap.Error(err))
	}
}
