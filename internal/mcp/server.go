package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/terplab/coa-extractor/internal/coa"
	"github.com/terplab/coa-extractor/internal/config"
	"github.com/terplab/coa-extractor/internal/descriptions"
	"github.com/terplab/coa-extractor/internal/store"
	"github.com/terplab/coa-extractor/internal/textsource"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	engine    *coa.Extractor
	docs      *textsource.Service
	records   *store.Store // nil when persistence is disabled
	logger    zerolog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(
	cfg *config.Config,
	engine *coa.Extractor,
	docs *textsource.Service,
	records *store.Store,
	logger zerolog.Logger,
) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if docs == nil {
		return nil, fmt.Errorf("docs cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		engine:    engine,
		docs:      docs,
		records:   records,
		logger:    logger,
		mcpServer: mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractFileTool := mcp.NewTool(
		"coa_extract_file",
		mcp.WithDescription(descriptions.GetToolDescription("coa_extract_file")),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Path to a COA report file (PDF, HTML, or text) or an http(s) URL"),
		),
	)
	s.mcpServer.AddTool(extractFileTool, s.handleExtractFile)

	extractTextTool := mcp.NewTool(
		"coa_extract_text",
		mcp.WithDescription(descriptions.GetToolDescription("coa_extract_text")),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Raw COA report text"),
		),
		mcp.WithString("source",
			mcp.Description("Optional source locator used for strain-name fallback"),
		),
	)
	s.mcpServer.AddTool(extractTextTool, s.handleExtractText)

	extractTerpenesTool := mcp.NewTool(
		"coa_extract_terpenes",
		mcp.WithDescription(descriptions.GetToolDescription("coa_extract_terpenes")),
		mcp.WithString("source",
			mcp.Description("Path or URL of the report (either source or text is required)"),
		),
		mcp.WithString("text",
			mcp.Description("Raw report text (either source or text is required)"),
		),
	)
	s.mcpServer.AddTool(extractTerpenesTool, s.handleExtractTerpenes)

	extractThcTool := mcp.NewTool(
		"coa_extract_thc",
		mcp.WithDescription(descriptions.GetToolDescription("coa_extract_thc")),
		mcp.WithString("source",
			mcp.Description("Path or URL of the report (either source or text is required)"),
		),
		mcp.WithString("text",
			mcp.Description("Raw report text (either source or text is required)"),
		),
	)
	s.mcpServer.AddTool(extractThcTool, s.handleExtractThc)

	classifyTool := mcp.NewTool(
		"coa_classify_product",
		mcp.WithDescription(descriptions.GetToolDescription("coa_classify_product")),
		mcp.WithString("source",
			mcp.Description("Path or URL of the report (either source or text is required)"),
		),
		mcp.WithString("text",
			mcp.Description("Raw report text (either source or text is required)"),
		),
	)
	s.mcpServer.AddTool(classifyTool, s.handleClassifyProduct)

	validateFileTool := mcp.NewTool(
		"coa_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("coa_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the report file"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)

	searchDirectoryTool := mcp.NewTool(
		"coa_search_directory",
		mcp.WithDescription(descriptions.GetToolDescription("coa_search_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	)
	s.mcpServer.AddTool(searchDirectoryTool, s.handleSearchDirectory)

	listRecordsTool := mcp.NewTool(
		"coa_list_records",
		mcp.WithDescription(descriptions.GetToolDescription("coa_list_records")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of records to return (default 20)"),
		),
	)
	s.mcpServer.AddTool(listRecordsTool, s.handleListRecords)

	serverInfoTool := mcp.NewTool(
		"coa_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("coa_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// resolveInput returns the report text for handlers accepting either a
// source locator or raw text.
func (s *Server) resolveInput(ctx context.Context, request mcp.CallToolRequest) (text, source string, err error) {
	args := request.GetArguments()

	if t, ok := args["text"].(string); ok && t != "" {
		src, _ := args["source"].(string)
		return t, src, nil
	}

	src, ok := args["source"].(string)
	if !ok || src == "" {
		return "", "", fmt.Errorf("either 'source' or 'text' must be provided")
	}

	doc, err := s.docs.Resolve(ctx, src)
	if err != nil {
		return "", "", err
	}
	return doc.Text, src, nil
}

// Handler functions
func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.docs.Resolve(ctx, source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.engine.ExtractFromSource(doc.Text, source)
	s.logger.Debug().Str("source", source).Str("kind", doc.Kind).Msg("extracted report")

	if s.records != nil {
		if _, err := s.records.Save(ctx, source, result); err != nil {
			s.logger.Warn().Err(err).Str("source", source).Msg("failed to store extraction record")
		}
	}

	responseText := fmt.Sprintf("Extracted COA fields from: %s (%s)\n\n", source, doc.Kind)
	responseText += s.formatExtractionResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source, _ := request.GetArguments()["source"].(string)
	result := s.engine.ExtractFromSource(text, source)

	responseText := "Extracted COA fields from provided text\n\n"
	responseText += s.formatExtractionResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleExtractTerpenes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, source, err := s.resolveInput(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report := s.engine.Terpenes(text)

	responseText := "Terpene Profile"
	if source != "" {
		responseText += fmt.Sprintf(" for: %s", source)
	}
	responseText += "\n"
	responseText += fmt.Sprintf("Percent column context: %t\n", report.PercentColumn)
	responseText += fmt.Sprintf("Terpenes found: %d\n", len(report.Records))

	if len(report.Records) > 0 {
		responseText += "\nRanked terpenes (percent by mass):\n"
		for i, rec := range report.Records {
			responseText += fmt.Sprintf("%d. %s: %.2f%%\n", i+1, rec.Name, rec.Percent)
		}
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleExtractThc(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, source, err := s.resolveInput(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	estimate := s.engine.Thc(text)

	responseText := "Total THC"
	if source != "" {
		responseText += fmt.Sprintf(" for: %s", source)
	}
	responseText += "\n"
	if estimate.TotalPercent != nil {
		responseText += fmt.Sprintf("Value: %.2f%%\n", *estimate.TotalPercent)
	} else {
		responseText += "Value: not determinable from this report\n"
	}
	responseText += fmt.Sprintf("Source: %s\n", estimate.Source)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleClassifyProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, source, err := s.resolveInput(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.engine.ExtractFromSource(text, source)

	responseText := "Product Classification"
	if source != "" {
		responseText += fmt.Sprintf(" for: %s", source)
	}
	responseText += "\n"
	if result.Type != "" {
		responseText += fmt.Sprintf("Type: %s\n", result.Type)
	} else {
		responseText += "Type: unknown\n"
	}
	if result.StrainName != "" {
		responseText += fmt.Sprintf("Strain: %s\n", result.StrainName)
	} else {
		responseText += "Strain: unknown\n"
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.docs.ValidateFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("Report file %s is valid and readable", result.Path)
		if result.Pages > 0 {
			responseText += fmt.Sprintf(" (%d pages)", result.Pages)
		}
	} else {
		responseText = fmt.Sprintf("Report validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := "" // service defaults to the configured directory
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	result, err := s.docs.SearchDirectory(directory, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No report files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleListRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.records == nil {
		return mcp.NewToolResultText("Record storage is disabled; start the server with --store to persist extraction records."), nil
	}

	limit := 20
	if n, ok := request.GetArguments()["limit"].(float64); ok && n > 0 {
		limit = int(n)
	}

	records, err := s.records.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(records) == 0 {
		return mcp.NewToolResultText("No extraction records stored yet."), nil
	}

	responseText := fmt.Sprintf("Stored extraction records (%d):\n\n", len(records))
	for i, rec := range records {
		responseText += fmt.Sprintf("%d. %s\n", i+1, rec.Source)
		if rec.StrainName != "" {
			responseText += fmt.Sprintf("   Strain: %s\n", rec.StrainName)
		}
		if rec.ProductType != "" {
			responseText += fmt.Sprintf("   Type: %s\n", rec.ProductType)
		}
		if rec.DominantTerpene != "" {
			responseText += fmt.Sprintf("   Dominant terpene: %s\n", rec.DominantTerpene)
		}
		if rec.ThcPercent != nil {
			responseText += fmt.Sprintf("   Total THC: %.2f%% (%s)\n", *rec.ThcPercent, rec.ThcSource)
		}
		responseText += fmt.Sprintf("   Extracted: %s\n", rec.ExtractedAt)
		if i < len(records)-1 {
			responseText += "\n"
		}
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseText := fmt.Sprintf("%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	responseText += fmt.Sprintf("Report Directory: %s\n", s.docs.ConfiguredDirectory())
	responseText += fmt.Sprintf("Max File Size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	responseText += fmt.Sprintf("Record Storage: %s\n", s.storageStatus(ctx))
	responseText += fmt.Sprintf("Terpene Dictionary: %d canonical names\n\n", s.engine.Dictionary().Size())

	// Directory contents
	if result, err := s.docs.SearchDirectory("", ""); err == nil && result.TotalCount > 0 {
		responseText += fmt.Sprintf("Directory Contents (%d report files found):\n", result.TotalCount)
		for i, file := range result.Files {
			if i >= 10 { // Limit to first 10 files for readability
				responseText += fmt.Sprintf("   ... and %d more files\n", result.TotalCount-10)
				break
			}
			responseText += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		responseText += "\n"
	} else {
		responseText += "Directory Contents: No report files found in configured directory\n\n"
	}

	// Available tools
	responseText += "Available Tools:\n"
	for _, name := range descriptions.GetAllToolNames() {
		desc := descriptions.GetToolDescription(name)
		// First line of the description is the summary.
		if idx := strings.Index(desc, "\n"); idx > 0 {
			desc = desc[:idx]
		}
		responseText += fmt.Sprintf("  • %s: %s\n", name, desc)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) storageStatus(ctx context.Context) string {
	if s.records == nil {
		return "disabled"
	}
	count, err := s.records.Count(ctx)
	if err != nil {
		return "enabled (record count unavailable)"
	}
	return fmt.Sprintf("enabled (%d records)", count)
}

// Formatting methods
func (s *Server) formatExtractionResult(result *coa.ExtractionResult) string {
	text := ""
	if result.StrainName != "" {
		text += fmt.Sprintf("Strain: %s\n", result.StrainName)
	} else {
		text += "Strain: unknown\n"
	}
	if result.Type != "" {
		text += fmt.Sprintf("Type: %s\n", result.Type)
	} else {
		text += "Type: unknown\n"
	}
	if result.DominantTerpene != "" {
		text += fmt.Sprintf("Dominant terpene: %s\n", result.DominantTerpene)
		if len(result.OtherTerpenes) > 0 {
			text += fmt.Sprintf("Other terpenes: %s\n", strings.Join(result.OtherTerpenes, ", "))
		}
	} else {
		text += "Dominant terpene: none detected\n"
	}
	if result.Thc.TotalPercent != nil {
		text += fmt.Sprintf("Total THC: %.2f%% (source: %s)\n", *result.Thc.TotalPercent, result.Thc.Source)
	} else {
		text += "Total THC: not determinable (source: none)\n"
	}
	return text
}

func (s *Server) formatSearchDirectoryResult(result *textsource.SearchResult) string {
	text := fmt.Sprintf("Found %d report file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		s.logger.Debug().
			Str("directory", s.docs.ConfiguredDirectory()).
			Msg("starting COA extraction server in stdio mode")
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs transport handles HTTP differently; stdio remains the
	// supported transport for now.
	s.logger.Warn().
		Str("address", s.config.Address()).
		Msg("server mode not yet implemented, falling back to stdio mode")
	return s.runStdioMode(ctx)
}
