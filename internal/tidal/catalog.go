package tidal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// lookup fetches one catalog resource by id.
func (c *Client) lookup(ctx context.Context, kind Kind, id string) (*Resource, error) {
	if err := requireID(kind.Singular()+" id", id); err != nil {
		return nil, err
	}

	doc, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%s", kind, id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s %s: %w", kind.Singular(), id, err)
	}
	res := doc.Data.First()
	if res == nil {
		return nil, fmt.Errorf("fetching %s %s: empty response", kind.Singular(), id)
	}
	return res, nil
}

// Playlist fetches a playlist by id.
func (c *Client) Playlist(ctx context.Context, playlistID string) (*Resource, error) {
	return c.lookup(ctx, KindPlaylists, playlistID)
}

// Album fetches an album by id.
func (c *Client) Album(ctx context.Context, albumID string) (*Resource, error) {
	return c.lookup(ctx, KindAlbums, albumID)
}

// Track fetches a track by id.
func (c *Client) Track(ctx context.Context, trackID string) (*Resource, error) {
	return c.lookup(ctx, KindTracks, trackID)
}

// Artist fetches an artist by id.
func (c *Client) Artist(ctx context.Context, artistID string) (*Resource, error) {
	return c.lookup(ctx, KindArtists, artistID)
}

// Search queries the catalog. searchType narrows the results to one resource
// kind (albums, artists, playlists, tracks); when empty the API returns every
// kind. The returned document carries the search result in Data and any
// side-loaded matches in Included.
func (c *Client) Search(ctx context.Context, query, searchType string) (*Document, error) {
	if err := requireID("query", query); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	if searchType != "" {
		params.Set("type", searchType)
		params.Set("include", searchType)
	}

	doc, err := c.do(ctx, http.MethodGet, "searchResults", params, nil)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}
	return doc, nil
}
