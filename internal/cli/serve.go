package cli

import (
	"github.com/spf13/cobra"

	"decknotes/internal/app"
)

func newServeHTTPCmd(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-http",
		Short: "Serve page reads and writes over local HTTP",
		Long: `Start a local HTTP listener fronting the page store.

  GET  /?appid=<id>&page=<n>               read a page
  POST /  {"appid":<id>,"page":<n>,"data":"..."}   write a page

Responses are JSON with permissive CORS headers; malformed requests get 400.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				e.cfg.HTTP.Addr = addr
			}
			return app.ServeHTTP(e.cfg, e.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func newServeMCPCmd(e *env, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Start an MCP server on stdio",
		Long: `Start decknotes as an MCP (Model Context Protocol) server.

Tools: read_page, write_page, delete_page, list_pages,
save_last_selected_page, load_last_selected_page.
Resource: decknotes://game/{gameId}/pages`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ServeMCP(e.cfg, e.log, version)
		},
	}
}
