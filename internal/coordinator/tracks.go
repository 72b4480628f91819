package coordinator

import (
	"context"

	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

// PlaylistTracks fetches the full track listing of a playlist. Listings are
// resolved on demand instead of being kept in the snapshot; the API links
// tracks by id, so each one is fetched individually.
func (c *Coordinator) PlaylistTracks(ctx context.Context, playlistID string) ([]tidal.Resource, error) {
	playlist, err := c.client.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return c.resolveTracks(ctx, playlist.RelationshipIDs("tracks"))
}

// AlbumTracks fetches the full track listing of an album.
func (c *Coordinator) AlbumTracks(ctx context.Context, albumID string) ([]tidal.Resource, error) {
	album, err := c.client.Album(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return c.resolveTracks(ctx, album.RelationshipIDs("tracks"))
}

func (c *Coordinator) resolveTracks(ctx context.Context, ids []string) ([]tidal.Resource, error) {
	tracks := make([]tidal.Resource, 0, len(ids))
	for _, id := range ids {
		track, err := c.client.Track(ctx, id)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *track)
	}
	return tracks, nil
}
