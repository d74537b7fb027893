package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	gameURIPrefix = "decknotes://game/"
	gameURISuffix = "/pages"
)

func (s *Server) registerResources() {
	// ── decknotes://game/{gameId}/pages ────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			gameURIPrefix+"{gameId}"+gameURISuffix,
			"Pages of a Game",
			mcp.WithTemplateDescription("Page listing (page, timestamp, empty) for one game"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleGamePagesResource,
	)
}

func (s *Server) handleGamePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	gameID, ok := gameIDFromURI(uri)
	if !ok {
		return nil, fmt.Errorf("could not extract gameId from URI: %s", uri)
	}

	data, err := json.MarshalIndent(s.pages.ListPages(gameID), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal pages: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// gameIDFromURI extracts the game ID from "decknotes://game/{id}/pages".
func gameIDFromURI(uri string) (int, bool) {
	rest, ok := strings.CutPrefix(uri, gameURIPrefix)
	if !ok {
		return 0, false
	}
	idPart, ok := strings.CutSuffix(rest, gameURISuffix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return 0, false
	}
	return id, true
}
