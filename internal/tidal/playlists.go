package tidal

import (
	"context"
	"fmt"
	"net/http"
)

// CreatePlaylist creates a playlist in the user's collection and returns it.
// The description may be empty.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (*Resource, error) {
	if err := requireID("playlist name", name); err != nil {
		return nil, err
	}

	payload := newResourceBody{
		Data: newResource{
			Type: string(KindPlaylists),
			Attributes: map[string]any{
				"name":        name,
				"description": description,
			},
		},
	}

	endpoint := fmt.Sprintf("userCollections/%s/relationships/playlists", c.userID)
	doc, err := c.do(ctx, http.MethodPost, endpoint, nil, payload)
	if err != nil {
		return nil, fmt.Errorf("creating playlist %q: %w", name, err)
	}
	playlist := doc.Data.First()
	if playlist == nil {
		return nil, fmt.Errorf("creating playlist %q: empty response", name)
	}
	return playlist, nil
}

// AddToPlaylist appends tracks to a playlist in one request.
func (c *Client) AddToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := requireID("playlist id", playlistID); err != nil {
		return err
	}
	if err := requireIDs("track ids", trackIDs); err != nil {
		return err
	}

	identifiers := make([]ResourceIdentifier, 0, len(trackIDs))
	for _, id := range trackIDs {
		identifiers = append(identifiers, ResourceIdentifier{ID: id, Type: string(KindTracks)})
	}

	endpoint := fmt.Sprintf("playlists/%s/relationships/tracks", playlistID)
	if _, err := c.do(ctx, http.MethodPost, endpoint, nil, linkageBody{Data: identifiers}); err != nil {
		return fmt.Errorf("adding tracks to playlist %s: %w", playlistID, err)
	}
	return nil
}

// RemoveFromPlaylist removes tracks from a playlist. The API unlinks tracks
// one at a time, so removal is not atomic: the first failure aborts the loop
// and earlier removals stay applied.
func (c *Client) RemoveFromPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := requireID("playlist id", playlistID); err != nil {
		return err
	}
	if err := requireIDs("track ids", trackIDs); err != nil {
		return err
	}

	for _, trackID := range trackIDs {
		endpoint := fmt.Sprintf("playlists/%s/relationships/tracks/%s", playlistID, trackID)
		if _, err := c.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
			return fmt.Errorf("removing track %s from playlist %s: %w", trackID, playlistID, err)
		}
	}
	return nil
}
