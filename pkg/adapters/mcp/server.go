// Package mcp exposes an Editor as a Model Context Protocol server so that
// agents can inspect and edit behavior trees.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/sanitize"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	treeURI   = "arbor://tree"
	statusURI = "arbor://status"
)

// Server wraps an Editor and exposes it as an MCP Server.
type Server struct {
	editor    *arbor.Editor
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(editor *arbor.Editor) *Server {
	s := &Server{
		editor: editor,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version),
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. to serve it over SSE.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// SSEHandler serves the MCP server over Server-Sent Events on /sse and
// /message. baseURL is the externally reachable address of the handler.
func (s *Server) SSEHandler(baseURL string) http.Handler {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	return mux
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("load_tree",
		mcp.WithDescription("Replace the current tab with a behavior tree XML document."),
		mcp.WithString("xml", mcp.Required(), mcp.Description("The XML document")),
	), s.handleLoadTree)

	s.mcpServer.AddTool(mcp.NewTool("export_tree",
		mcp.WithDescription("Export the current tab as XML. Fails unless the tree has exactly one root with one child."),
	), s.handleExportTree)

	s.mcpServer.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Report validity, mode, layout and undo/redo depths of the current tab."),
	), s.handleStatus)

	s.mcpServer.AddTool(mcp.NewTool("validate",
		mcp.WithDescription("List structural issues of the current tab."),
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Revert the last edit."),
	), s.handleUndo)

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the last undone edit."),
	), s.handleRedo)

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a node to the current tab, optionally connected under a parent."),
		mcp.WithString("model", mcp.Description("Registered model ID, e.g. Sequence or a custom Action")),
		mcp.WithString("kind", mcp.Description("Node kind, used when model is omitted")),
		mcp.WithString("id", mcp.Description("Instance ID (generated when omitted)")),
		mcp.WithString("name", mcp.Description("Instance label")),
		mcp.WithString("parent", mcp.Description("ID of the parent to connect under")),
		mcp.WithNumber("x", mcp.Description("X position")),
		mcp.WithNumber("y", mcp.Description("Y position")),
		mcp.WithObject("params", mcp.Description("Parameter values by name")),
	), s.handleAddNode)

	s.mcpServer.AddTool(mcp.NewTool("register_model",
		mcp.WithDescription("Register a custom Action, Decorator or SubTree model."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Model ID")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Action, Decorator or SubTree")),
		mcp.WithArray("params", mcp.Description(`Parameter declarations, e.g. [{"label":"speed","type":"Int"}]`)),
	), s.handleRegisterModel)

	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a node and its edges."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
	), s.handleRemoveNode)

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Connect a child under a parent."),
		mcp.WithString("parent", mcp.Required(), mcp.Description("Parent node ID")),
		mcp.WithString("child", mcp.Required(), mcp.Description("Child node ID")),
	), s.handleConnect)

	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Remove a parent->child edge."),
		mcp.WithString("parent", mcp.Required(), mcp.Description("Parent node ID")),
		mcp.WithString("child", mcp.Required(), mcp.Description("Child node ID")),
	), s.handleDisconnect)

	s.mcpServer.AddTool(mcp.NewTool("move_node",
		mcp.WithDescription("Move a node. Sibling order follows positions."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("X position")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Y position")),
	), s.handleMove)

	s.mcpServer.AddTool(mcp.NewTool("set_param",
		mcp.WithDescription("Set a node parameter."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Parameter name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Parameter value")),
	), s.handleSetParam)

	s.mcpServer.AddTool(mcp.NewTool("arrange",
		mcp.WithDescription("Re-derive node positions of the current tab."),
	), s.handleArrange)
}

func (s *Server) handleLoadTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, _ := req.GetArguments()["xml"].(string)
	if doc == "" {
		return mcp.NewToolResultError("xml argument is required"), nil
	}
	clean, err := sanitize.Document([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("document rejected: %v", err)), nil
	}
	if err := s.editor.LoadXML(clean); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	return s.statusResult()
}

func (s *Server) handleExportTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.editor.SaveXML()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.statusResult()
}

func (s *Server) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issues := s.editor.Diagnose()
	if len(issues) == 0 {
		return mcp.NewToolResultText("tree is valid"), nil
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.after(s.editor.Undo())
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.after(s.editor.Redo())
}

func (s *Server) handleArrange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.after(s.editor.AutoArrange())
}

func (s *Server) handleAddNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args addNodeArgs
	if err := decodeArgs(req.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := s.editor.AddNode(arbor.NodeSpec{
		Model:  args.Model,
		Kind:   args.Kind,
		ID:     args.ID,
		Name:   args.Name,
		Parent: args.Parent,
		Pos:    domain.Position{X: args.X, Y: args.Y},
		Params: args.Params,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(id), nil
}

func (s *Server) handleRegisterModel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var model registry.Model
	if err := decodeArgs(req.GetArguments(), &model); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.editor.Registry().Register(model); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(model.ID), nil
}

func (s *Server) handleRemoveNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["id"].(string)
	return s.after(s.editor.Edit(func(scene *domain.Scene) error {
		return scene.RemoveNode(id)
	}))
}

func (s *Server) handleConnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args edgeArgs
	if err := decodeArgs(req.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.after(s.editor.Edit(func(scene *domain.Scene) error {
		return scene.Connect(args.Parent, args.Child)
	}))
}

func (s *Server) handleDisconnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args edgeArgs
	if err := decodeArgs(req.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.after(s.editor.Edit(func(scene *domain.Scene) error {
		return scene.Disconnect(args.Parent, args.Child)
	}))
}

func (s *Server) handleMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args moveArgs
	if err := decodeArgs(req.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.after(s.editor.Edit(func(scene *domain.Scene) error {
		return scene.Move(args.ID, domain.Position{X: args.X, Y: args.Y})
	}))
}

func (s *Server) handleSetParam(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args paramArgs
	if err := decodeArgs(req.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.after(s.editor.Edit(func(scene *domain.Scene) error {
		return scene.SetParam(args.ID, args.Name, args.Value)
	}))
}

func (s *Server) after(err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.statusResult()
}

func (s *Server) statusResult() (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.editor.Status())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(treeURI, "Current behavior tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.editor.Tree())
		if err != nil {
			return nil, fmt.Errorf("failed to encode tree: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      treeURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(statusURI, "Editor status",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.editor.Status())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      statusURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
