package tidal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// collection fetches one relationship kind of the user's collection. The
// include parameter asks the API to side-load full resources so callers get
// attributes, not just identifiers.
func (c *Client) collection(ctx context.Context, kind Kind) ([]Resource, error) {
	params := url.Values{}
	params.Set("include", string(kind))

	endpoint := fmt.Sprintf("userCollections/%s/relationships/%s", c.userID, kind)
	doc, err := c.do(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", kind, err)
	}
	return doc.Merged(), nil
}

// UserPlaylists returns the playlists in the user's collection.
func (c *Client) UserPlaylists(ctx context.Context) ([]Resource, error) {
	return c.collection(ctx, KindPlaylists)
}

// UserAlbums returns the user's favorite albums.
func (c *Client) UserAlbums(ctx context.Context) ([]Resource, error) {
	return c.collection(ctx, KindAlbums)
}

// UserTracks returns the user's favorite tracks.
func (c *Client) UserTracks(ctx context.Context) ([]Resource, error) {
	return c.collection(ctx, KindTracks)
}

// UserArtists returns the user's favorite artists.
func (c *Client) UserArtists(ctx context.Context) ([]Resource, error) {
	return c.collection(ctx, KindArtists)
}

// addFavorite links one resource into the user's collection.
func (c *Client) addFavorite(ctx context.Context, kind Kind, id string) error {
	if err := requireID(string(kind)+" id", id); err != nil {
		return err
	}

	payload := identifierBody{Data: ResourceIdentifier{ID: id, Type: string(kind)}}
	endpoint := fmt.Sprintf("userCollections/%s/relationships/%s", c.userID, kind)
	if _, err := c.do(ctx, http.MethodPost, endpoint, nil, payload); err != nil {
		return fmt.Errorf("adding favorite %s %s: %w", kind.Singular(), id, err)
	}
	return nil
}

// removeFavorite unlinks one resource from the user's collection.
func (c *Client) removeFavorite(ctx context.Context, kind Kind, id string) error {
	if err := requireID(string(kind)+" id", id); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("userCollections/%s/relationships/%s/%s", c.userID, kind, id)
	if _, err := c.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("removing favorite %s %s: %w", kind.Singular(), id, err)
	}
	return nil
}

// AddFavoriteTrack adds a track to the user's favorites.
func (c *Client) AddFavoriteTrack(ctx context.Context, trackID string) error {
	return c.addFavorite(ctx, KindTracks, trackID)
}

// RemoveFavoriteTrack removes a track from the user's favorites.
func (c *Client) RemoveFavoriteTrack(ctx context.Context, trackID string) error {
	return c.removeFavorite(ctx, KindTracks, trackID)
}

// AddFavoriteAlbum adds an album to the user's favorites.
func (c *Client) AddFavoriteAlbum(ctx context.Context, albumID string) error {
	return c.addFavorite(ctx, KindAlbums, albumID)
}

// RemoveFavoriteAlbum removes an album from the user's favorites.
func (c *Client) RemoveFavoriteAlbum(ctx context.Context, albumID string) error {
	return c.removeFavorite(ctx, KindAlbums, albumID)
}
