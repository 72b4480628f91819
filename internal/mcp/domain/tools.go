// Package domain defines the MCP tools and resources exposed over the
// bridge: library listings, playback control, and catalog search. Handlers
// are bound to narrow interfaces so the same definitions serve stdio and
// HTTP transports.
package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tidalbridge/tidalbridge/internal/bridge"
	"github.com/tidalbridge/tidalbridge/internal/entity"
)

// Library provides read access to the cached Tidal library. The refresh
// coordinator satisfies it.
type Library interface {
	entity.Library
	Stale() bool
}

// ContentPlayer starts playback and reports what is playing.
type ContentPlayer interface {
	PlayMedia(ctx context.Context, mediaType entity.MediaType, mediaID string) error
	Status() entity.Status
}

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, query, searchType string) (*bridge.SearchResults, error)
}

// LibraryListInput is the empty input accepted by the library list tools.
type LibraryListInput struct{}

// LibraryListResult is the output of the library list tools.
type LibraryListResult struct {
	Kind  string        `json:"kind" jsonschema:"library kind the entries belong to"`
	Count int           `json:"count" jsonschema:"number of entries"`
	Stale bool          `json:"stale" jsonschema:"true when the last refresh failed and entries may be outdated"`
	Items []entity.Item `json:"items" jsonschema:"library entries"`
}

// PlaylistListTool defines the MCP tool for listing the user's playlists.
func PlaylistListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "tidal_get_playlists",
		Description: "List the user's Tidal playlists with their names and descriptions",
	}
}

// AlbumListTool defines the MCP tool for listing favorite albums.
func AlbumListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "tidal_get_albums",
		Description: "List the user's favorite Tidal albums",
	}
}

// TrackListTool defines the MCP tool for listing favorite tracks.
func TrackListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "tidal_get_tracks",
		Description: "List the user's favorite Tidal tracks",
	}
}

// ArtistListTool defines the MCP tool for listing followed artists.
func ArtistListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "tidal_get_artists",
		Description: "List the artists the user follows on Tidal",
	}
}

// LibraryListHandler lists one kind of the cached library. The entries come
// from the current snapshot; no API call is made.
func LibraryListHandler(library Library, kind entity.SensorKind) mcp.ToolHandlerFor[LibraryListInput, LibraryListResult] {
	sensor := entity.NewSensor(kind, library)
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ LibraryListInput) (*mcp.CallToolResult, LibraryListResult, error) {
		items := sensor.Items()
		return nil, LibraryListResult{
			Kind:  string(kind),
			Count: len(items),
			Stale: library.Stale(),
			Items: items,
		}, nil
	}
}

// PlayContentInput selects what to play.
type PlayContentInput struct {
	MediaType string `json:"media_type" jsonschema:"one of track, playlist, album or artist"`
	MediaID   string `json:"media_id" jsonschema:"Tidal identifier of the content"`
}

// PlayContentResult reports the player state after starting playback.
type PlayContentResult struct {
	Status string `json:"status" jsonschema:"ok when playback started"`
	Title  string `json:"title,omitempty" jsonschema:"display title of what is now playing"`
}

// PlayContentTool defines the MCP tool for starting playback.
func PlayContentTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "tidal_play_content",
		Description: "Play a Tidal track, playlist, album or artist on the bridge's media player",
	}
}

// PlayContentHandler starts playback of the requested content.
func PlayContentHandler(player ContentPlayer) mcp.ToolHandlerFor[PlayContentInput, PlayContentResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlayContentInput) (*mcp.CallToolResult, PlayContentResult, error) {
		mediaType := entity.MediaType(strings.ToLower(strings.TrimSpace(input.MediaType)))
		if err := player.PlayMedia(ctx, mediaType, input.MediaID); err != nil {
			return nil, PlayContentResult{}, fmt.Errorf("playing %s %s: %w", input.MediaType, input.MediaID, err)
		}
		status := player.Status()
		title := status.Title
		if title == "" {
			title = status.Playlist
		}
		if title == "" {
			title = status.Album
		}
		return nil, PlayContentResult{Status: "ok", Title: title}, nil
	}
}

// SearchInput is a catalog search request.
type SearchInput struct {
	Query string `json:"query" jsonschema:"free text to search the Tidal catalog for"`
	Type  string `json:"type,omitempty" jsonschema:"optional result filter: tracks, albums, artists or playlists"`
}

// SearchTool defines the MCP tool for catalog search.
func SearchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "tidal_search",
		Description: "Search the Tidal catalog for tracks, albums, artists and playlists",
	}
}

// SearchHandler runs a catalog search against the live API.
func SearchHandler(searcher Searcher) mcp.ToolHandlerFor[SearchInput, bridge.SearchResults] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, bridge.SearchResults, error) {
		results, err := searcher.Search(ctx, input.Query, input.Type)
		if err != nil {
			return nil, bridge.SearchResults{}, fmt.Errorf("searching for %q: %w", input.Query, err)
		}
		return nil, *results, nil
	}
}
