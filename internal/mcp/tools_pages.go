package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPageTools() {
	// ── read_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read one page of a game's notes. Missing pages come back empty with timestamp 0."),
		mcp.WithNumber("gameId", mcp.Description("Game (app) ID"), mcp.Required()),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 0"), mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleReadPage)

	// ── write_page ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("write_page",
		mcp.WithDescription("Replace the stored data of a page. Data is stored as-is."),
		mcp.WithNumber("gameId", mcp.Description("Game (app) ID"), mcp.Required()),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 0"), mcp.Required()),
		mcp.WithString("data", mcp.Description("Serialized page data (drawing strokes)"), mcp.Required()),
	), s.handleWritePage)

	// ── delete_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a page. Returns false if the page did not exist."),
		mcp.WithNumber("gameId", mcp.Description("Game (app) ID"), mcp.Required()),
		mcp.WithNumber("page", mcp.Description("Page number"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeletePage)

	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the stored pages of a game with their timestamps"),
		mcp.WithNumber("gameId", mcp.Description("Game (app) ID"), mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListPages)

	// ── save_last_selected_page ────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_last_selected_page",
		mcp.WithDescription("Remember which page of a game was viewed last"),
		mcp.WithNumber("gameId", mcp.Description("Game (app) ID"), mcp.Required()),
		mcp.WithNumber("page", mcp.Description("Page number"), mcp.Required()),
	), s.handleSaveLastSelectedPage)

	// ── load_last_selected_page ────────────────────────
	s.mcp.AddTool(mcp.NewTool("load_last_selected_page",
		mcp.WithDescription("Return the page of a game that was viewed last (0 if none)"),
		mcp.WithNumber("gameId", mcp.Description("Game (app) ID"), mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleLoadLastSelectedPage)
}

// gamePageArgs extracts the gameId and page arguments. On failure it returns
// the tool error to send back.
func gamePageArgs(req mcp.CallToolRequest) (int, int, *mcp.CallToolResult) {
	gameID, err := req.RequireInt("gameId")
	if err != nil {
		return 0, 0, mcp.NewToolResultError("gameId is required")
	}
	page, err := req.RequireInt("page")
	if err != nil {
		return 0, 0, mcp.NewToolResultError("page is required")
	}
	return gameID, page, nil
}

func (s *Server) handleReadPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, page, errRes := gamePageArgs(req)
	if errRes != nil {
		return errRes, nil
	}
	return jsonResult(s.pages.ReadPage(gameID, page))
}

func (s *Server) handleWritePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, page, errRes := gamePageArgs(req)
	if errRes != nil {
		return errRes, nil
	}
	data, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError("data is required"), nil
	}
	return jsonResult(s.pages.WritePage(ctx, gameID, page, data))
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, page, errRes := gamePageArgs(req)
	if errRes != nil {
		return errRes, nil
	}
	return jsonResult(s.pages.DeletePage(ctx, gameID, page))
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := req.RequireInt("gameId")
	if err != nil {
		return mcp.NewToolResultError("gameId is required"), nil
	}
	return jsonResult(s.pages.ListPages(gameID))
}

func (s *Server) handleSaveLastSelectedPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, page, errRes := gamePageArgs(req)
	if errRes != nil {
		return errRes, nil
	}
	return jsonResult(s.pages.SaveLastSelectedPage(ctx, gameID, page))
}

func (s *Server) handleLoadLastSelectedPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := req.RequireInt("gameId")
	if err != nil {
		return mcp.NewToolResultError("gameId is required"), nil
	}
	return jsonResult(s.pages.LoadLastSelectedPage(gameID))
}
