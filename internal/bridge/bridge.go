// Package bridge exposes the action surface of the integration: playback
// services, playlist and favorite mutations, and catalog search.
//
// Mutations delegate to the API client and, when they succeed, nudge the
// refresh coordinator so sensors pick the change up without waiting for the
// next scheduled cycle. The nudge is asynchronous; the mutation's result
// does not depend on the refresh outcome.
package bridge

import (
	"context"
	"fmt"

	"github.com/tidalbridge/tidalbridge/internal/entity"
	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

// Client is the slice of the API client the service acts through.
type Client interface {
	CreatePlaylist(ctx context.Context, name, description string) (*tidal.Resource, error)
	AddToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
	RemoveFromPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
	AddFavoriteTrack(ctx context.Context, trackID string) error
	RemoveFavoriteTrack(ctx context.Context, trackID string) error
	AddFavoriteAlbum(ctx context.Context, albumID string) error
	RemoveFavoriteAlbum(ctx context.Context, albumID string) error
	Search(ctx context.Context, query, searchType string) (*tidal.Document, error)
}

// Refresher accepts asynchronous refresh requests.
type Refresher interface {
	RequestRefresh()
}

// MediaPlayer starts playback for the play services.
type MediaPlayer interface {
	PlayMedia(ctx context.Context, mediaType entity.MediaType, mediaID string) error
}

// Service wires the action surface together.
type Service struct {
	client    Client
	refresher Refresher
	player    MediaPlayer
}

// New creates the service.
func New(client Client, refresher Refresher, player MediaPlayer) *Service {
	return &Service{
		client:    client,
		refresher: refresher,
		player:    player,
	}
}

// PlayTrack starts playing a track.
func (s *Service) PlayTrack(ctx context.Context, trackID string) error {
	return s.player.PlayMedia(ctx, entity.MediaTypeTrack, trackID)
}

// PlayPlaylist starts playing a playlist.
func (s *Service) PlayPlaylist(ctx context.Context, playlistID string) error {
	return s.player.PlayMedia(ctx, entity.MediaTypePlaylist, playlistID)
}

// PlayAlbum starts playing an album.
func (s *Service) PlayAlbum(ctx context.Context, albumID string) error {
	return s.player.PlayMedia(ctx, entity.MediaTypeAlbum, albumID)
}

// PlayArtist starts playing an artist.
func (s *Service) PlayArtist(ctx context.Context, artistID string) error {
	return s.player.PlayMedia(ctx, entity.MediaTypeArtist, artistID)
}

// CreatePlaylist creates a playlist and nudges the library.
func (s *Service) CreatePlaylist(ctx context.Context, name, description string) (*tidal.Resource, error) {
	playlist, err := s.client.CreatePlaylist(ctx, name, description)
	if err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}
	s.refresher.RequestRefresh()
	return playlist, nil
}

// AddToPlaylist adds tracks to a playlist and nudges the library.
func (s *Service) AddToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := s.client.AddToPlaylist(ctx, playlistID, trackIDs); err != nil {
		return fmt.Errorf("adding to playlist: %w", err)
	}
	s.refresher.RequestRefresh()
	return nil
}

// RemoveFromPlaylist removes tracks from a playlist and nudges the library.
func (s *Service) RemoveFromPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := s.client.RemoveFromPlaylist(ctx, playlistID, trackIDs); err != nil {
		return fmt.Errorf("removing from playlist: %w", err)
	}
	s.refresher.RequestRefresh()
	return nil
}

// LikeTrack adds a track to the user's favorites and nudges the library.
func (s *Service) LikeTrack(ctx context.Context, trackID string) error {
	if err := s.client.AddFavoriteTrack(ctx, trackID); err != nil {
		return fmt.Errorf("liking track: %w", err)
	}
	s.refresher.RequestRefresh()
	return nil
}

// UnlikeTrack removes a track from the user's favorites and nudges the
// library.
func (s *Service) UnlikeTrack(ctx context.Context, trackID string) error {
	if err := s.client.RemoveFavoriteTrack(ctx, trackID); err != nil {
		return fmt.Errorf("unliking track: %w", err)
	}
	s.refresher.RequestRefresh()
	return nil
}

// LikeAlbum adds an album to the user's favorites and nudges the library.
func (s *Service) LikeAlbum(ctx context.Context, albumID string) error {
	if err := s.client.AddFavoriteAlbum(ctx, albumID); err != nil {
		return fmt.Errorf("liking album: %w", err)
	}
	s.refresher.RequestRefresh()
	return nil
}

// UnlikeAlbum removes an album from the user's favorites and nudges the
// library.
func (s *Service) UnlikeAlbum(ctx context.Context, albumID string) error {
	if err := s.client.RemoveFavoriteAlbum(ctx, albumID); err != nil {
		return fmt.Errorf("unliking album: %w", err)
	}
	s.refresher.RequestRefresh()
	return nil
}
