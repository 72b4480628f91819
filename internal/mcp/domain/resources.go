package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tidalbridge/tidalbridge/internal/entity"
)

// libraryResourceURI addresses the full library snapshot.
const libraryResourceURI = "tidal://library"

// LibraryPayload is the JSON body served for the library resource.
type LibraryPayload struct {
	Stale           bool          `json:"stale"`
	FetchedAt       string        `json:"fetched_at,omitempty"`
	Playlists       []entity.Item `json:"playlists"`
	FavoriteAlbums  []entity.Item `json:"favorite_albums"`
	FavoriteTracks  []entity.Item `json:"favorite_tracks"`
	FavoriteArtists []entity.Item `json:"favorite_artists"`
}

// LibraryResource defines the MCP resource for the cached library snapshot.
func LibraryResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "library_snapshot",
		Title:       "Tidal Library",
		Description: "The user's cached Tidal library: playlists, favorite albums, tracks and artists",
		MIMEType:    "application/json",
		URI:         libraryResourceURI,
	}
}

// LibraryResourceHandler serves the current snapshot as a JSON document.
func LibraryResourceHandler(library Library) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := libraryResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != libraryResourceURI {
			return nil, fmt.Errorf("unknown resource %q", uri)
		}

		snap := library.Current()
		payload := LibraryPayload{
			Stale:           library.Stale(),
			Playlists:       entity.NewSensor(entity.SensorPlaylists, library).Items(),
			FavoriteAlbums:  entity.NewSensor(entity.SensorFavoriteAlbums, library).Items(),
			FavoriteTracks:  entity.NewSensor(entity.SensorFavoriteTracks, library).Items(),
			FavoriteArtists: entity.NewSensor(entity.SensorFavoriteArtists, library).Items(),
		}
		if !snap.FetchedAt.IsZero() {
			payload.FetchedAt = snap.FetchedAt.Format(time.RFC3339)
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling library payload: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
