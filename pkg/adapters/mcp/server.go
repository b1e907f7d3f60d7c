package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	explorer "github.com/EricFan2002/GTOJsonExplorer"
	"github.com/EricFan2002/GTOJsonExplorer/internal/logging"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TreeURI is the resource holding the rendered tree.
const TreeURI = "gtox://tree"

// Navigator is the part of explorer.Explorer the MCP server drives.
type Navigator interface {
	Load(ctx context.Context, sessionID string) error
	Goto(ctx context.Context, addr domain.Address) error
	Toggle(ctx context.Context, addr domain.Address) error
	Select(ctx context.Context, addr domain.Address) error
	Retry(ctx context.Context, addr domain.Address) error
	Snapshot() domain.RenderTree
	Lines() []explorer.Line
	Selection() (domain.Address, bool)
	Failure(addr domain.Address) error
	Moves(addr domain.Address) []explorer.Move
	State() domain.NavState
	Wait()
}

// MoveView is a navigation button as seen by an agent.
type MoveView struct {
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	Path      string `json:"path"`
	Navigable bool   `json:"navigable"`
}

// View is the answer of every navigation tool.
type View struct {
	Selection string     `json:"selection"`
	State     string     `json:"state"`
	Failure   string     `json:"failure,omitempty"`
	Stale     bool       `json:"stale,omitempty"`
	Moves     []MoveView `json:"moves"`
	Tree      string     `json:"tree"`
}

// Server exposes an Explorer as an MCP server.
type Server struct {
	nav       Navigator
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(nav Navigator, opts ...Option) *Server {
	s := &Server{
		nav:       nav,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("gtox-mcp", strings.TrimSpace(explorer.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type navigation func(context.Context, domain.Address) error

func (s *Server) registerTools() {
	pathArg := mcp.WithString("path",
		mcp.Required(),
		mcp.Description(`Node path, e.g. "/childrens/BET 2/dealcards/Ah". The root is "".`),
	)

	s.mcpServer.AddTool(mcp.NewTool("load",
		mcp.WithDescription("Load a dataset session and reset the view."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by the upload endpoint.")),
	), s.handleLoad)

	s.mcpServer.AddTool(mcp.NewTool("goto",
		mcp.WithDescription("Navigate to a node: resolve it, select it and expand its ancestors."),
		pathArg,
	), s.navigate("goto", s.nav.Goto))

	s.mcpServer.AddTool(mcp.NewTool("toggle",
		mcp.WithDescription("Expand or collapse a node."),
		pathArg,
	), s.navigate("toggle", s.nav.Toggle))

	s.mcpServer.AddTool(mcp.NewTool("select",
		mcp.WithDescription("Select a node that is already loaded."),
		pathArg,
	), s.navigate("select", s.nav.Select))

	s.mcpServer.AddTool(mcp.NewTool("retry",
		mcp.WithDescription("Retry the failed operation at a node."),
		pathArg,
	), s.navigate("retry", s.nav.Retry))

	s.mcpServer.AddTool(mcp.NewTool("snapshot",
		mcp.WithDescription("Return the visible tree as JSON."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toJSONResult(s.nav.Snapshot())
	})
}

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.nav.Load(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	s.nav.Wait()
	return toJSONResult(s.view(domain.Root(), false))
}

func (s *Server) navigate(name string, fn navigation) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		addr, err := domain.ParseAddress(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		err = fn(ctx, addr)
		stale := errors.Is(err, domain.ErrStaleDiscarded)
		if err != nil && !stale && !errors.Is(err, domain.ErrRecoveryFailed) {
			s.logger.Warn("MCP navigation rejected", "tool", name, "path", raw, "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err)), nil
		}
		s.nav.Wait()
		return toJSONResult(s.view(addr, stale))
	}
}

// view describes the selection, or addr when nothing is selected.
func (s *Server) view(addr domain.Address, stale bool) View {
	v := View{State: s.nav.State().String(), Stale: stale}
	focus := addr
	if sel, ok := s.nav.Selection(); ok {
		focus = sel
		v.Selection = sel.String()
	}
	if err := s.nav.Failure(addr); err != nil {
		v.Failure = err.Error()
	}
	for _, m := range s.nav.Moves(focus) {
		v.Moves = append(v.Moves, MoveView{
			Kind:      string(m.Kind),
			Label:     m.Label,
			Path:      m.Target.String(),
			Navigable: m.Navigable,
		})
	}

	var b strings.Builder
	for _, l := range s.nav.Lines() {
		b.WriteString(l.Prefix)
		b.WriteString(l.Node.Label)
		if l.Node.Selected {
			b.WriteString(" *")
		}
		if l.Node.Error != "" {
			b.WriteString(" [error]")
		}
		b.WriteByte('\n')
	}
	v.Tree = b.String()
	return v
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TreeURI, "Visible game tree",
		mcp.WithResourceDescription("The tree as currently expanded, with the selection."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.nav.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode tree: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TreeURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func toJSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
