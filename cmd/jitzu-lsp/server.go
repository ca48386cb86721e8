package main

import (
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

const lsName = "jitzu-lsp"

var log = commonlog.GetLogger("jitzu.lsp")

// server keeps the last analysis of every open document.
type server struct {
	mu   sync.Mutex
	docs map[protocol.DocumentUri]*document

	handler protocol.Handler
	version string
}

func newServer() *server {
	s := &server{
		docs:    make(map[protocol.DocumentUri]*document),
		version: "0.1.0",
	}
	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.didOpen,
		TextDocumentDidChange: s.didChange,
		TextDocumentDidClose:  s.didClose,

		TextDocumentHover:      s.hover,
		TextDocumentDefinition: s.definition,
		TextDocumentFormatting: s.formatting,
	}
	return s
}

func (s *server) run() error {
	return glspserver.NewServer(&s.handler, lsName, false).RunStdio()
}

func (s *server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (s *server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := analyze(params.TextDocument.URI, params.TextDocument.Text)
	s.store(doc)
	log.Debugf("opened %s", doc.path)
	s.publish(ctx, doc)
	return nil
}

func (s *server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// Full sync: the last change carries the whole text.
	if len(params.ContentChanges) == 0 {
		return nil
	}
	whole, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	doc := analyze(params.TextDocument.URI, whole.Text)
	s.store(doc)
	s.publish(ctx, doc)
	return nil
}

func (s *server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *server) hover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.lookup(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	return doc.hover(params.Position), nil
}

func (s *server) definition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.lookup(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	if loc := doc.definition(params.Position); loc != nil {
		return loc, nil
	}
	return nil, nil
}

func (s *server) formatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc := s.lookup(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	return doc.formatEdits(), nil
}

func (s *server) store(doc *document) {
	s.mu.Lock()
	s.docs[doc.uri] = doc
	s.mu.Unlock()
}

func (s *server) lookup(uri protocol.DocumentUri) *document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[uri]
}

func (s *server) publish(ctx *glsp.Context, doc *document) {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         doc.uri,
		Diagnostics: convertDiagnostics(doc.errors),
	})
}

func boolPtr(b bool) *bool {
	return &b
}
