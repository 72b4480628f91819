// Package service hosts the MCP server over stdio or streamable HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tidalbridge/tidalbridge/internal/entity"
	"github.com/tidalbridge/tidalbridge/internal/mcp/domain"
)

const (
	serverName    = "Tidal Bridge MCP"
	serverVersion = "0.1.0"

	// DefaultHTTPAddr binds the HTTP transport to loopback only.
	DefaultHTTPAddr = "localhost:8081"

	shutdownTimeout = 10 * time.Second
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string
}

// Deps are the bridge components the MCP tools operate on.
type Deps struct {
	Library  domain.Library
	Player   domain.ContentPlayer
	Searcher domain.Searcher
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New creates an MCP server with the bridge's tools and resources registered.
func New(deps Deps) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, domain.PlaylistListTool(), domain.LibraryListHandler(deps.Library, entity.SensorPlaylists))
	mcp.AddTool(mcpServer, domain.AlbumListTool(), domain.LibraryListHandler(deps.Library, entity.SensorFavoriteAlbums))
	mcp.AddTool(mcpServer, domain.TrackListTool(), domain.LibraryListHandler(deps.Library, entity.SensorFavoriteTracks))
	mcp.AddTool(mcpServer, domain.ArtistListTool(), domain.LibraryListHandler(deps.Library, entity.SensorFavoriteArtists))
	mcp.AddTool(mcpServer, domain.PlayContentTool(), domain.PlayContentHandler(deps.Player))
	mcp.AddTool(mcpServer, domain.SearchTool(), domain.SearchHandler(deps.Searcher))

	mcpServer.AddResource(domain.LibraryResource(), domain.LibraryResourceHandler(deps.Library))

	return &Server{mcpServer: mcpServer}
}

// Run serves MCP until the context is canceled. An empty transport defaults
// to stdio.
func Run(ctx context.Context, cfg Config, deps Deps) error {
	server := New(deps)

	switch cfg.Transport {
	case TransportStdio, "":
		return server.serveStdio(ctx)
	case TransportHTTP:
		addr := cfg.HTTPAddr
		if addr == "" {
			addr = DefaultHTTPAddr
		}
		return server.serveHTTP(ctx, addr)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

func (s *Server) serveStdio(ctx context.Context) error {
	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serving MCP over stdio: %w", err)
	}
	return nil
}

// serveHTTP runs the SDK's streamable HTTP handler. Write timeouts stay
// unset so long-lived SSE streams are not cut off.
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("MCP server listening on http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving MCP over HTTP: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down MCP server: %w", err)
	}
	return nil
}
