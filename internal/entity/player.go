// Package entity projects the library snapshot into read-only views and
// models the virtual media player.
//
// Sensors expose per-kind counts and item listings derived from the current
// snapshot; they hold no state of their own. The player tracks what is
// nominally playing and delegates catalog lookups to the API client, so
// playback commands work even while a library refresh is in flight.
package entity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/tidalbridge/tidalbridge/internal/coordinator"
	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

// ErrUnsupportedMedia is returned for media types the player cannot start.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// PlayerState is the player's nominal playback state.
type PlayerState string

const (
	StateIdle    PlayerState = "idle"
	StatePlaying PlayerState = "playing"
	StatePaused  PlayerState = "paused"
)

// MediaType identifies what kind of content a play request refers to.
type MediaType string

const (
	MediaTypeTrack    MediaType = "track"
	MediaTypePlaylist MediaType = "playlist"
	MediaTypeAlbum    MediaType = "album"
	MediaTypeArtist   MediaType = "artist"
)

// CatalogClient is the slice of the API client the player needs for
// on-demand lookups.
type CatalogClient interface {
	Playlist(ctx context.Context, playlistID string) (*tidal.Resource, error)
	Album(ctx context.Context, albumID string) (*tidal.Resource, error)
	Track(ctx context.Context, trackID string) (*tidal.Resource, error)
	Artist(ctx context.Context, artistID string) (*tidal.Resource, error)
}

// Library provides snapshot reads and on-demand track listings. The refresh
// coordinator satisfies it.
type Library interface {
	Current() *coordinator.Snapshot
	PlaylistTracks(ctx context.Context, playlistID string) ([]tidal.Resource, error)
	AlbumTracks(ctx context.Context, albumID string) ([]tidal.Resource, error)
}

// Player is a virtual media player over the Tidal catalog. It keeps track
// of what is nominally playing; actual audio output is out of scope.
type Player struct {
	catalog CatalogClient
	library Library

	mu              sync.RWMutex
	state           PlayerState
	currentTrack    *tidal.Resource
	currentPlaylist *tidal.Resource
	currentAlbum    *tidal.Resource
	currentArtist   *tidal.Resource
	volume          float64
	muted           bool
}

// NewPlayer creates an idle player at full volume.
func NewPlayer(catalog CatalogClient, library Library) *Player {
	return &Player{
		catalog: catalog,
		library: library,
		state:   StateIdle,
		volume:  1.0,
	}
}

// PlayMedia starts playing the identified content. Playlists and albums
// resolve their first track; artists only set the artist context. Lookups
// run against the API directly, independent of the refresh cycle. On error
// the player state is left unchanged.
func (p *Player) PlayMedia(ctx context.Context, mediaType MediaType, mediaID string) error {
	switch mediaType {
	case MediaTypeTrack:
		track, err := p.catalog.Track(ctx, mediaID)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.currentTrack = track
		p.state = StatePlaying
		p.mu.Unlock()

	case MediaTypePlaylist:
		playlist, err := p.catalog.Playlist(ctx, mediaID)
		if err != nil {
			return err
		}
		tracks, err := p.library.PlaylistTracks(ctx, mediaID)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.currentPlaylist = playlist
		if len(tracks) > 0 {
			p.currentTrack = &tracks[0]
		}
		p.state = StatePlaying
		p.mu.Unlock()

	case MediaTypeAlbum:
		album, err := p.catalog.Album(ctx, mediaID)
		if err != nil {
			return err
		}
		tracks, err := p.library.AlbumTracks(ctx, mediaID)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.currentAlbum = album
		if len(tracks) > 0 {
			p.currentTrack = &tracks[0]
		}
		p.state = StatePlaying
		p.mu.Unlock()

	case MediaTypeArtist:
		artist, err := p.catalog.Artist(ctx, mediaID)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.currentArtist = artist
		p.state = StatePlaying
		p.mu.Unlock()

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMedia, mediaType)
	}

	return nil
}

// Play resumes playback.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StatePlaying
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StatePaused
}

// Stop clears the playback context entirely.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateIdle
	p.currentTrack = nil
	p.currentPlaylist = nil
	p.currentAlbum = nil
	p.currentArtist = nil
}

// NextTrack logs the request. The player does not yet keep the full listing
// it is playing from.
// TODO: resolve the next track from the current playlist or album listing.
func (p *Player) NextTrack() {
	log.Printf("player: next track requested")
}

// PreviousTrack logs the request, like NextTrack.
func (p *Player) PreviousTrack() {
	log.Printf("player: previous track requested")
}

// SetVolume sets the volume level in the range 0 to 1.
func (p *Player) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return fmt.Errorf("%w: volume level %v outside 0..1", tidal.ErrInvalidInput, level)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = level
	return nil
}

// SetMuted mutes or unmutes the player.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

// Status is a point-in-time view of the player.
type Status struct {
	State    PlayerState `json:"state"`
	TrackID  string      `json:"track_id,omitempty"`
	Title    string      `json:"title,omitempty"`
	Artist   string      `json:"artist,omitempty"`
	Album    string      `json:"album,omitempty"`
	Playlist string      `json:"playlist,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
	Volume   float64     `json:"volume"`
	Muted    bool        `json:"muted"`
}

// Status reports what the player is doing right now.
func (p *Player) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := Status{
		State:  p.state,
		Volume: p.volume,
		Muted:  p.muted,
	}

	if p.currentTrack != nil {
		status.TrackID = p.currentTrack.ID
		status.Title = p.currentTrack.Attributes.Title
		if artist := p.currentTrack.Relationships["artists"].Data.First(); artist != nil {
			status.Artist = artist.DisplayName()
		}
	}
	if p.currentAlbum != nil {
		status.Album = p.currentAlbum.Attributes.Title
	}
	if p.currentPlaylist != nil {
		status.Playlist = p.currentPlaylist.Attributes.Name
	}
	if p.currentArtist != nil && status.Artist == "" {
		status.Artist = p.currentArtist.Attributes.Name
	}

	// Cover art comes from the track when present, then the album.
	if p.currentTrack != nil {
		status.ImageURL = p.currentTrack.CoverURL()
	}
	if status.ImageURL == "" && p.currentAlbum != nil {
		status.ImageURL = p.currentAlbum.CoverURL()
	}

	return status
}
