package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
	"github.com/r9s-ai/semgrep-lsp/internal/indent"
)

// ServerVersion is reported in the initialize response.
var ServerVersion = "dev"

// Options configures a Server. Zero values select the built-in catalog,
// two-space indentation and the default cache size.
type Options struct {
	Catalog   *catalog.Catalog
	Style     indent.Style
	CacheSize int
}

type Server struct {
	in     *bufio.Reader
	out    io.Writer
	logger *log.Logger

	catalog *catalog.Catalog
	style   indent.Style
	edits   *editCache

	docs         map[string]string
	shuttingDown bool
}

func NewServer(in io.Reader, out io.Writer, logger *log.Logger, opts Options) *Server {
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	style := opts.Style
	if style == (indent.Style{}) {
		style = indent.DefaultStyle()
	}
	return &Server{
		in:      bufio.NewReader(in),
		out:     out,
		logger:  logger,
		catalog: cat,
		style:   style.Bounded(),
		edits:   newEditCache(opts.CacheSize),
		docs:    map[string]string{},
	}
}

type inboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type responseMessage struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result"`
	Error   *respError  `json:"error,omitempty"`
}

type respError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidParams = -32602
)

type initializeParams struct {
	InitializationOptions *initializationOptions `json:"initializationOptions,omitempty"`
}

// initializationOptions lets a client set the indentation used for
// completion snippets before any formatting request arrives.
type initializationOptions struct {
	TabSize      *int  `json:"tabSize,omitempty"`
	InsertSpaces *bool `json:"insertSpaces,omitempty"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
	ServerInfo   serverInfo         `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type serverCapabilities struct {
	TextDocumentSync           int                    `json:"textDocumentSync"`
	CompletionProvider         *completionProvider    `json:"completionProvider,omitempty"`
	HoverProvider              bool                   `json:"hoverProvider"`
	DocumentFormattingProvider bool                   `json:"documentFormattingProvider"`
	SemanticTokensProvider     *semanticTokensOptions `json:"semanticTokensProvider,omitempty"`
}

type completionProvider struct {
	ResolveProvider   bool     `json:"resolveProvider"`
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentItem struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type versionedTextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   versionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []textDocumentContentChangeEvent `json:"contentChanges"`
}

type completionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type hoverParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

func (s *Server) Run() error {
	for {
		raw, err := readMessage(s.in)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Printf("invalid JSON-RPC payload: %v", err)
			continue
		}

		if msg.Method == "" {
			continue
		}
		if err := s.handle(msg); err != nil {
			if err == io.EOF {
				return nil
			}
			s.logger.Printf("handle method=%s error: %v", msg.Method, err)
		}
	}
}

func (s *Server) handle(msg inboundMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg.ID, msg.Params)
	case "initialized":
		return nil
	case "shutdown":
		s.shuttingDown = true
		return s.reply(msg.ID, map[string]any{})
	case "exit":
		return io.EOF
	case "textDocument/didOpen":
		var p didOpenParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		s.docs[p.TextDocument.URI] = p.TextDocument.Text
		return s.publishDiagnostics(p.TextDocument.URI)
	case "textDocument/didChange":
		var p didChangeParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		if len(p.ContentChanges) == 0 {
			return nil
		}
		s.docs[p.TextDocument.URI] = p.ContentChanges[len(p.ContentChanges)-1].Text
		return s.publishDiagnostics(p.TextDocument.URI)
	case "textDocument/didClose":
		var p didCloseParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		delete(s.docs, p.TextDocument.URI)
		return s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
			URI:         p.TextDocument.URI,
			Diagnostics: []Diagnostic{},
		})
	case "textDocument/completion":
		return s.handleCompletion(msg.ID, msg.Params)
	case "textDocument/hover":
		return s.handleHover(msg.ID, msg.Params)
	case "textDocument/formatting":
		return s.handleFormatting(msg.ID, msg.Params)
	case "textDocument/semanticTokens/full":
		return s.handleSemanticTokens(msg.ID, msg.Params)
	default:
		if msg.ID != nil {
			return s.reply(msg.ID, nil)
		}
		return nil
	}
}

func (s *Server) handleInitialize(id *json.RawMessage, params json.RawMessage) error {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return s.replyError(id, codeInvalidParams, "invalid params for initialize")
		}
	}
	if o := p.InitializationOptions; o != nil {
		if o.TabSize != nil {
			s.style.UnitWidth = *o.TabSize
		}
		if o.InsertSpaces != nil {
			s.style.UseSpaces = *o.InsertSpaces
		}
		s.style = s.style.Bounded()
	}

	res := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: 1,
			CompletionProvider: &completionProvider{
				ResolveProvider:   false,
				TriggerCharacters: []string{"-", "$"},
			},
			HoverProvider:              true,
			DocumentFormattingProvider: true,
			SemanticTokensProvider: &semanticTokensOptions{
				Legend: semanticTokensLegend{
					TokenTypes:     semanticTokenLegendTypes,
					TokenModifiers: []string{},
				},
				Full: true,
			},
		},
		ServerInfo: serverInfo{
			Name:    "semgrep-lsp",
			Version: ServerVersion,
		},
	}
	return s.reply(id, res)
}

func (s *Server) handleHover(id *json.RawMessage, params json.RawMessage) error {
	var p hoverParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, codeInvalidParams, "invalid params for hover")
	}
	h, ok := hoverAt(s.catalog, s.docs[p.TextDocument.URI], p.Position)
	if !ok {
		return s.reply(id, nil)
	}
	return s.reply(id, h)
}

func (s *Server) reply(id *json.RawMessage, result interface{}) error {
	if id == nil {
		return nil
	}
	resp := responseMessage{
		JSONRPC: "2.0",
		ID:      decodeID(id),
		Result:  result,
	}
	return writeMessage(s.out, resp)
}

func (s *Server) replyError(id *json.RawMessage, code int, msg string) error {
	if id == nil {
		return nil
	}
	resp := struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      interface{} `json:"id"`
		Error   *respError  `json:"error"`
	}{
		JSONRPC: "2.0",
		ID:      decodeID(id),
		Error: &respError{
			Code:    code,
			Message: msg,
		},
	}
	return writeMessage(s.out, resp)
}

func decodeID(id *json.RawMessage) interface{} {
	var idVal interface{}
	if err := json.Unmarshal(*id, &idVal); err != nil {
		idVal = string(*id)
	}
	return idVal
}

func (s *Server) notify(method string, params interface{}) error {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return writeMessage(s.out, payload)
}

func readMessage(r *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			v := strings.TrimSpace(line[len("content-length:"):])
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length %q: %w", v, err)
			}
			contentLength = n
		}
	}
	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	buf := make([]byte, contentLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeMessage(w io.Writer, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(body))
	return err
}

func lineAt(text string, line int) string {
	if line < 0 {
		return ""
	}
	lines := indent.SplitLines(text)
	if line >= len(lines) {
		return ""
	}
	return lines[line]
}
