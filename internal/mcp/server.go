package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"catalogue-adapter/internal/adapter"
	"catalogue-adapter/pkg/models"
)

// Server exposes read-only catalogue operations as MCP tools. Tool calls are
// made with a pre-issued service token rather than a per-caller token.
type Server struct {
	mcpServer    *server.MCPServer
	catalogue    adapter.Catalogue
	serviceToken string
}

// NewServer creates a new Server.
func NewServer(catalogue adapter.Catalogue, serviceToken string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Metadata Catalogue",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		catalogue:    catalogue,
		serviceToken: serviceToken,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_records",
			mcp.WithDescription("List an institution's metadata records"),
			mcp.WithString("institution", mcp.Required(), mcp.Description("The institution key")),
			mcp.WithNumber("offset", mcp.Description("Pagination offset")),
			mcp.WithNumber("limit", mcp.Description("Pagination limit")),
		),
		s.handleListRecords,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_record",
			mcp.WithDescription("Fetch a single metadata record"),
			mcp.WithString("institution", mcp.Required(), mcp.Description("The institution key")),
			mcp.WithString("id", mcp.Required(), mcp.Description("The record id")),
		),
		s.handleGetRecord,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_collections",
			mcp.WithDescription("List an institution's metadata collections"),
			mcp.WithString("institution", mcp.Required(), mcp.Description("The institution key")),
		),
		s.handleListCollections,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_projects",
			mcp.WithDescription("List all projects"),
		),
		s.handleListProjects,
	)
}

func (s *Server) handleListRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	institution, ok := args["institution"].(string)
	if !ok || institution == "" {
		return mcp.NewToolResultError("Missing required parameter: institution"), nil
	}

	var pagination models.Pagination
	if offset, ok := args["offset"].(float64); ok {
		pagination.Offset = int(offset)
	}
	if limit, ok := args["limit"].(float64); ok {
		pagination.Limit = int(limit)
	}

	records, err := s.catalogue.ListMetadataRecords(ctx, institution, pagination, s.serviceToken)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list records: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(records)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	institution, ok := args["institution"].(string)
	if !ok || institution == "" {
		return mcp.NewToolResultError("Missing required parameter: institution"), nil
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}

	record, err := s.catalogue.GetMetadataRecord(ctx, institution, id, s.serviceToken)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get record: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(record)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	institution, ok := args["institution"].(string)
	if !ok || institution == "" {
		return mcp.NewToolResultError("Missing required parameter: institution"), nil
	}

	collections, err := s.catalogue.ListCollections(ctx, institution, s.serviceToken)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list collections: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(collections)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.catalogue.ListProjects(ctx, s.serviceToken)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list projects: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(projects)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MountHTTPHandlers mounts the MCP protocol endpoints on the given mux.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
