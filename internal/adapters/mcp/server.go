// Package mcp exposes the modeling engine as an MCP server, so agent hosts
// can drive modeling sessions over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/carverlab/facet"
	"github.com/carverlab/facet/pkg/feature"
	"github.com/carverlab/facet/pkg/model"
	"github.com/carverlab/facet/pkg/pmi"
)

// ApplyResponse is the structured result of the apply_feature tool.
type ApplyResponse struct {
	SessionID string       `json:"sessionId" jsonschema_description:"Session the feature was applied to"`
	Result    model.Result `json:"result" jsonschema_description:"Partial result of the feature step"`
}

// Server wraps the Facet engine and exposes it as an MCP Server.
type Server struct {
	engine    *facet.Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *facet.Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("facet-mcp", strings.TrimSpace(facet.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: apply_feature
	applyTool := mcp.NewTool("apply_feature",
		mcp.WithDescription("Apply a modeling feature (e.g. an extrusion) to a session and return its partial result."),
		mcp.WithString("session_id", mcp.Description("Session to mutate. Omit to create a new session.")),
		mcp.WithString("upstream", mcp.Description("JSON object with the upstream result model to compose onto (optional)")),
		mcp.WithString("feature", mcp.Required(), mcp.Description("JSON object describing the feature in wire form")),
		mcp.WithOutputSchema[ApplyResponse](),
	)
	s.mcpServer.AddTool(applyTool, mcp.NewStructuredToolHandler(s.handleApplyFeature))

	// TOOL: mesh_shape
	meshTool := mcp.NewTool("mesh_shape",
		mcp.WithDescription("Triangulate a registered shape and return its mesh buffers."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session holding the shape")),
		mcp.WithString("handle", mcp.Required(), mcp.Description("Shape handle, e.g. shape:1")),
		mcp.WithString("options", mcp.Description("JSON object with linearDeflection, angularDeflection, relative (optional)")),
		mcp.WithOutputSchema[facet.Mesh](),
	)
	s.mcpServer.AddTool(meshTool, mcp.NewStructuredToolHandler(s.handleMesh))

	// TOOL: export_step
	exportTool := mcp.NewTool("export_step",
		mcp.WithDescription("Export a registered shape as a STEP exchange file."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session holding the shape")),
		mcp.WithString("handle", mcp.Required(), mcp.Description("Shape handle")),
		mcp.WithString("schema", mcp.Description("Application protocol token, e.g. AP242 (optional)")),
	)
	s.mcpServer.AddTool(exportTool, s.handleExport)

	// TOOL: export_step_pmi
	exportPMITool := mcp.NewTool("export_step_pmi",
		mcp.WithDescription("Export a registered shape as STEP with datums and tolerances embedded."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session holding the shape")),
		mcp.WithString("handle", mcp.Required(), mcp.Description("Shape handle")),
		mcp.WithString("pmi", mcp.Required(), mcp.Description("JSON object with datums and constraints")),
		mcp.WithString("schema", mcp.Description("Application protocol token (optional)")),
	)
	s.mcpServer.AddTool(exportPMITool, s.handleExportPMI)
}

func (s *Server) handleApplyFeature(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ApplyResponse, error) {
	sessionID, _ := args["session_id"].(string)

	upstream := model.NewResult()
	if upStr, ok := args["upstream"].(string); ok && upStr != "" {
		if err := json.Unmarshal([]byte(upStr), &upstream); err != nil {
			return ApplyResponse{}, fmt.Errorf("invalid upstream: %w", err)
		}
	}

	featStr, _ := args["feature"].(string)
	var raw map[string]any
	if err := json.Unmarshal([]byte(featStr), &raw); err != nil {
		return ApplyResponse{}, fmt.Errorf("invalid feature: %w", err)
	}
	f, err := feature.Parse(raw)
	if err != nil {
		return ApplyResponse{}, err
	}

	id, built, err := s.engine.ApplyFeature(ctx, sessionID, upstream, f)
	if err != nil {
		return ApplyResponse{}, fmt.Errorf("apply failed: %w", err)
	}
	return ApplyResponse{SessionID: id, Result: built}, nil
}

func (s *Server) handleMesh(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (facet.Mesh, error) {
	sessionID, _ := args["session_id"].(string)
	handle, _ := args["handle"].(string)

	var opts facet.MeshOptions
	if optStr, ok := args["options"].(string); ok && optStr != "" {
		var wire struct {
			LinearDeflection  float64 `json:"linearDeflection"`
			AngularDeflection float64 `json:"angularDeflection"`
			Relative          bool    `json:"relative"`
		}
		if err := json.Unmarshal([]byte(optStr), &wire); err != nil {
			return facet.Mesh{}, fmt.Errorf("invalid options: %w", err)
		}
		opts = facet.MeshOptions{
			LinearDeflection:  wire.LinearDeflection,
			AngularDeflection: wire.AngularDeflection,
			Relative:          wire.Relative,
		}
	}

	mesh, err := s.engine.Mesh(ctx, sessionID, handle, opts)
	if err != nil {
		return facet.Mesh{}, fmt.Errorf("mesh failed: %w", err)
	}
	return mesh, nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	handle, _ := args["handle"].(string)
	schema, _ := args["schema"].(string)

	data, err := s.engine.ExportSTEP(ctx, sessionID, handle, schema)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleExportPMI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	handle, _ := args["handle"].(string)
	schema, _ := args["schema"].(string)
	pmiStr, _ := args["pmi"].(string)

	var raw map[string]any
	if err := json.Unmarshal([]byte(pmiStr), &raw); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid pmi payload: %v", err)), nil
	}
	payload, err := pmi.ParsePayload(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid pmi payload: %v", err)), nil
	}

	data, err := s.engine.ExportSTEPWithPMI(ctx, sessionID, handle, schema, payload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
