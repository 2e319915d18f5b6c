package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pario-ai/advisor/pkg/advisor"
	"github.com/pario-ai/advisor/pkg/cache"
	"github.com/pario-ai/advisor/pkg/cache/memory"
	"github.com/pario-ai/advisor/pkg/cascade"
	"github.com/pario-ai/advisor/pkg/fallback"
	"github.com/pario-ai/advisor/pkg/models"
	"github.com/pario-ai/advisor/pkg/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c := cache.New(memory.New(0), cache.DefaultTTLPolicy())
	t.Cleanup(func() { c.Close() })
	a := advisor.New(cascade.New(nil), advisor.WithCache(c))
	return New(a, session.NewContext("mcp", "en", 10, 5), "test")
}

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	line = append(line, '\n')

	var out bytes.Buffer
	if err := srv.Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, out.String())
	}
	return resp
}

func callTool(t *testing.T, srv *Server, name string, args any) ToolCallResult {
	t.Helper()
	rawArgs, err := json.Marshal(args)
	if err != nil {
		t.Fatal(err)
	}
	params, _ := json.Marshal(ToolCallParams{Name: name, Arguments: rawArgs})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`7`),
		Method:  "tools/call",
		Params:  params,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected rpc error: %+v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	return result
}

func TestInitialize(t *testing.T) {
	resp := sendAndReceive(t, newTestServer(t), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result InitializeResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.ServerInfo.Name != "advisor" {
		t.Errorf("expected server name advisor, got %s", result.ServerInfo.Name)
	}
	if result.ProtocolVersion != protocolVersion {
		t.Errorf("unexpected protocol version %s", result.ProtocolVersion)
	}
}

func TestToolsList(t *testing.T) {
	resp := sendAndReceive(t, newTestServer(t), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`2`),
		Method:  "tools/list",
	})

	data, _ := json.Marshal(resp.Result)
	var result ToolsListResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"advisor_advice", "advisor_ask", "advisor_claim_help", "advisor_cache_stats", "advisor_options"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
	if len(result.Tools) != len(toolHandlers) {
		t.Errorf("tools/list has %d tools, %d handlers", len(result.Tools), len(toolHandlers))
	}
}

func TestToolCallAdvice(t *testing.T) {
	srv := newTestServer(t)
	result := callTool(t, srv, "advisor_advice", map[string]any{
		"age": 30, "occupation": "Farmer", "income_bracket": "₹5,000-10,000",
		"location": "Pune", "family_size": "2-3", "health": "Good", "goal": "Basic Protection",
	})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	text := result.Content[0].Text
	for _, want := range []string{"PMSBY", "PMJJBY", "₹7500/month", "offline guidance"} {
		if !strings.Contains(text, want) {
			t.Errorf("advice missing %q", want)
		}
	}
	if srv.session.State() != session.Ready {
		t.Errorf("expected session ready, got %s", srv.session.State())
	}
}

func TestToolCallAdviceInvalid(t *testing.T) {
	result := callTool(t, newTestServer(t), "advisor_advice", map[string]any{"age": 10})
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	if !strings.Contains(result.Content[0].Text, "age") {
		t.Errorf("error should name the field: %s", result.Content[0].Text)
	}
}

func TestToolCallAskAndHistory(t *testing.T) {
	srv := newTestServer(t)
	q := "What documents do I need for a claim?"
	result := callTool(t, srv, "advisor_ask", askArgs{Question: q})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if !strings.HasPrefix(result.Content[0].Text, fallback.Answer(q)) {
		t.Errorf("expected the documents answer, got %s", result.Content[0].Text)
	}

	history := callTool(t, srv, "advisor_history", historyArgs{N: 5})
	if !strings.Contains(history.Content[0].Text, q) {
		t.Errorf("history missing question: %s", history.Content[0].Text)
	}

	history = callTool(t, srv, "advisor_history", historyArgs{N: 11})
	if !history.IsError || !strings.Contains(history.Content[0].Text, "between 0 and 10") {
		t.Errorf("expected retention bound error, got %+v", history)
	}
}

func TestToolCallClaimHelp(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "advisor_claim_help", claimHelpArgs{ClaimType: models.ClaimAccident})
	want, _ := fallback.ClaimHelp(models.ClaimAccident)
	if result.Content[0].Text != want {
		t.Errorf("expected fixed PMSBY process, got %s", result.Content[0].Text)
	}

	result = callTool(t, srv, "advisor_claim_help", claimHelpArgs{ClaimType: models.ClaimHealth, Issue: "Hospital denied cashless treatment"})
	if result.IsError || !strings.Contains(result.Content[0].Text, "14555") {
		t.Errorf("expected PMJAY help, got %s", result.Content[0].Text)
	}

	result = callTool(t, srv, "advisor_claim_help", claimHelpArgs{})
	if !result.IsError {
		t.Error("expected error for missing claim_type")
	}
}

func TestToolCallCacheStats(t *testing.T) {
	srv := newTestServer(t)
	callTool(t, srv, "advisor_options", nil)
	callTool(t, srv, "advisor_options", nil)

	result := callTool(t, srv, "advisor_cache_stats", nil)
	text := result.Content[0].Text
	if !strings.Contains(text, "Entries:  1") || !strings.Contains(text, "Hit Rate: 50.0%") {
		t.Errorf("unexpected cache stats: %s", text)
	}
}

func TestToolCallOptions(t *testing.T) {
	result := callTool(t, newTestServer(t), "advisor_options", nil)
	for _, want := range []string{"Farmer", models.ClaimLife, "hi"} {
		if !strings.Contains(result.Content[0].Text, want) {
			t.Errorf("options missing %q", want)
		}
	}
}

func TestToolCallStatsWithoutJournal(t *testing.T) {
	result := callTool(t, newTestServer(t), "advisor_stats", nil)
	if !strings.Contains(result.Content[0].Text, "not enabled") {
		t.Errorf("unexpected output: %s", result.Content[0].Text)
	}
}

func TestUnknownTool(t *testing.T) {
	result := callTool(t, newTestServer(t), "advisor_nope", nil)
	if !result.IsError {
		t.Error("expected isError for unknown tool")
	}
}

func TestNotificationNoResponse(t *testing.T) {
	line, _ := json.Marshal(Request{JSONRPC: "2.0", Method: "notifications/initialized"})
	line = append(line, '\n')

	var out bytes.Buffer
	if err := newTestServer(t).Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output for notification, got %s", out.String())
	}
}

func TestUnknownMethod(t *testing.T) {
	resp := sendAndReceive(t, newTestServer(t), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`3`),
		Method:  "resources/list",
	})
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("expected method not found, got %+v", resp.Error)
	}
}

func TestParseError(t *testing.T) {
	var out bytes.Buffer
	if err := newTestServer(t).Run(context.Background(), strings.NewReader("{oops\n"), &out); err != nil {
		t.Fatal(err)
	}
	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Errorf("expected parse error, got %+v", resp.Error)
	}
}

func TestToolAnnotations(t *testing.T) {
	for _, tool := range allTools {
		if tool.Annotations == nil {
			t.Errorf("%s has no annotations", tool.Name)
			continue
		}
		readOnly := tool.Annotations.ReadOnlyHint
		generates := tool.Name == "advisor_advice" || tool.Name == "advisor_ask" || tool.Name == "advisor_claim_help"
		if generates == readOnly {
			t.Errorf("%s: readOnlyHint=%v", tool.Name, readOnly)
		}
	}
}

func TestRequestWithoutIDGetsNoReply(t *testing.T) {
	line, _ := json.Marshal(Request{JSONRPC: "2.0", Method: "ping"})
	line = append(line, '\n')

	var out bytes.Buffer
	if err := newTestServer(t).Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no reply, got %s", out.String())
	}
}
