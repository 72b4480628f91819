package entity

import (
	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

// SensorKind identifies which slice of the library a sensor reports on.
type SensorKind string

const (
	SensorPlaylists       SensorKind = "playlists"
	SensorFavoriteAlbums  SensorKind = "favorite_albums"
	SensorFavoriteTracks  SensorKind = "favorite_tracks"
	SensorFavoriteArtists SensorKind = "favorite_artists"
)

// Item is one library entry projected for a sensor. Only the fields that
// apply to the sensor's kind are set: playlists carry name and description,
// albums title and barcode, tracks title and ISRC, artists only a name.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	ISRC        string `json:"isrc,omitempty"`
}

// Sensor is a read-only projection of one library kind. It holds no data
// itself; every read goes to the current snapshot.
type Sensor struct {
	kind    SensorKind
	name    string
	library Library
}

// NewSensor creates a sensor over the given library kind.
func NewSensor(kind SensorKind, library Library) *Sensor {
	names := map[SensorKind]string{
		SensorPlaylists:       "Playlists",
		SensorFavoriteAlbums:  "Favorite Albums",
		SensorFavoriteTracks:  "Favorite Tracks",
		SensorFavoriteArtists: "Favorite Artists",
	}
	return &Sensor{kind: kind, name: names[kind], library: library}
}

// AllSensors returns one sensor per library kind.
func AllSensors(library Library) []*Sensor {
	return []*Sensor{
		NewSensor(SensorPlaylists, library),
		NewSensor(SensorFavoriteAlbums, library),
		NewSensor(SensorFavoriteTracks, library),
		NewSensor(SensorFavoriteArtists, library),
	}
}

// Kind returns which library slice the sensor reports on.
func (s *Sensor) Kind() SensorKind {
	return s.kind
}

// Name returns the sensor's display name.
func (s *Sensor) Name() string {
	return s.name
}

// Count returns the number of entries, the sensor's primary value.
func (s *Sensor) Count() int {
	return len(s.resources())
}

// Items returns the projected entries.
func (s *Sensor) Items() []Item {
	resources := s.resources()
	items := make([]Item, 0, len(resources))
	for _, res := range resources {
		items = append(items, s.project(res))
	}
	return items
}

func (s *Sensor) resources() []tidal.Resource {
	snap := s.library.Current()
	switch s.kind {
	case SensorPlaylists:
		return snap.Playlists
	case SensorFavoriteAlbums:
		return snap.Albums
	case SensorFavoriteTracks:
		return snap.Tracks
	case SensorFavoriteArtists:
		return snap.Artists
	default:
		return nil
	}
}

func (s *Sensor) project(res tidal.Resource) Item {
	item := Item{ID: res.ID}
	switch s.kind {
	case SensorPlaylists:
		item.Name = res.Attributes.Name
		item.Description = res.Attributes.Description
	case SensorFavoriteAlbums:
		item.Title = res.Attributes.Title
		item.Barcode = res.Attributes.Barcode
	case SensorFavoriteTracks:
		item.Title = res.Attributes.Title
		item.ISRC = res.Attributes.ISRC
	case SensorFavoriteArtists:
		item.Name = res.Attributes.Name
	}
	return item
}
