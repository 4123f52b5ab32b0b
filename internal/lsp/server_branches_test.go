package lsp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

// splitErrWriter succeeds once (header), then fails (body).
type splitErrWriter struct{ calls int }

func (w *splitErrWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.calls == 1 {
		return len(p), nil
	}
	return 0, errors.New("body write failed")
}

func TestHandle_InitializedAndExitWithoutShutdown(t *testing.T) {
	s := NewServer(strings.NewReader(""), io.Discard, log.New(io.Discard, "", 0), Options{})

	require.NoError(t, s.handle(inboundMessage{JSONRPC: "2.0", Method: "initialized"}))
	assert.ErrorIs(t, s.handle(inboundMessage{JSONRPC: "2.0", Method: "exit"}), io.EOF)
}

func TestHandle_UnknownMethod(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(strings.NewReader(""), &out, log.New(io.Discard, "", 0), Options{})

	// With ID -> reply with result:null
	rawID := json.RawMessage("10")
	require.NoError(t, s.handle(inboundMessage{JSONRPC: "2.0", ID: &rawID, Method: "custom/method"}))
	msgs := readAllLSPMessages(t, out.Bytes())
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "result")

	// Without ID -> notification style, no output.
	out.Reset()
	require.NoError(t, s.handle(inboundMessage{JSONRPC: "2.0", Method: "custom/notify"}))
	assert.Zero(t, out.Len())
}

func TestHandle_DidChangeBranches(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(strings.NewReader(""), &out, log.New(io.Discard, "", 0), Options{})

	err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "textDocument/didChange", Params: json.RawMessage(`{"oops":`)})
	require.Error(t, err, "expected unmarshal error for malformed didChange params")

	uri := "file:///tmp/change.yaml"
	s.docs[uri] = "rules:\n"
	params, err := json.Marshal(didChangeParams{
		TextDocument: versionedTextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)

	// Empty changes -> no diagnostics publish.
	require.NoError(t, s.handle(inboundMessage{JSONRPC: "2.0", Method: "textDocument/didChange", Params: params}))
	assert.Zero(t, out.Len())

	params, err = json.Marshal(didChangeParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri},
		ContentChanges: []textDocumentContentChangeEvent{{Text: "rules:\n  - id: old\n"}, {Text: "rules:\n  - id: latest\n"}},
	})
	require.NoError(t, err)
	require.NoError(t, s.handle(inboundMessage{JSONRPC: "2.0", Method: "textDocument/didChange", Params: params}))
	assert.Contains(t, s.docs[uri], "latest")

	msgs := readAllLSPMessages(t, out.Bytes())
	require.Len(t, msgs, 1)
	assert.Equal(t, "textDocument/publishDiagnostics", msgs[0]["method"])
}

func TestRun_InvalidJSONPayloadContinues(t *testing.T) {
	var in bytes.Buffer
	writeLSPMessage(&in, json.RawMessage(`{`)) // malformed JSON payload
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"id":      11,
		"method":  "initialize",
		"params":  map[string]any{},
	})

	var out bytes.Buffer
	s := NewServer(&in, &out, log.New(io.Discard, "", 0), Options{})
	require.NoError(t, s.Run())
	msgs := readAllLSPMessages(t, out.Bytes())
	require.Len(t, msgs, 1)
	assert.NotNil(t, msgs[0]["id"])
}

func TestRun_LogsHandlerErrors(t *testing.T) {
	var in bytes.Buffer
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/didOpen",
		"params":  "not an object",
	})

	var logs bytes.Buffer
	s := NewServer(&in, io.Discard, log.New(&logs, "", 0), Options{})
	require.NoError(t, s.Run())
	assert.Contains(t, logs.String(), "handle method=textDocument/didOpen error")
}

func TestRun_MissingContentLength(t *testing.T) {
	s := NewServer(strings.NewReader("X-Other: 1\r\n\r\n{}"), io.Discard, log.New(io.Discard, "", 0), Options{})
	assert.ErrorContains(t, s.Run(), "missing Content-Length")
}

func TestReplyAndReplyError_NilIDNoOutput(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(strings.NewReader(""), &out, nil, Options{})
	require.NoError(t, s.reply(nil, map[string]any{"ok": true}))
	require.NoError(t, s.replyError(nil, -32600, "bad request"))
	assert.Zero(t, out.Len())
}

func TestWriteMessage_ErrorPaths(t *testing.T) {
	assert.Error(t, writeMessage(io.Discard, map[string]any{"bad": func() {}}), "marshal error")
	assert.Error(t, writeMessage(errWriter{}, map[string]any{"ok": true}), "header write error")
	assert.Error(t, writeMessage(&splitErrWriter{}, map[string]any{"ok": true}), "body write error")
}

func TestLineAt(t *testing.T) {
	assert.Empty(t, lineAt("a\nb", -1))
	assert.Empty(t, lineAt("a\nb", 9))
	assert.Equal(t, "a", lineAt("a\r\nb\r\n", 0))
}
