package entity

import (
	"testing"

	"github.com/tidalbridge/tidalbridge/internal/coordinator"
	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

func libraryFixture() *fakeLibrary {
	return &fakeLibrary{snap: &coordinator.Snapshot{
		Playlists: []tidal.Resource{
			{ID: "pl-1", Attributes: tidal.Attributes{Name: "Focus", Description: "deep work"}},
			{ID: "pl-2", Attributes: tidal.Attributes{Name: "Gym"}},
		},
		Albums: []tidal.Resource{
			{ID: "al-1", Attributes: tidal.Attributes{Title: "Geogaddi", Barcode: "5021603094123"}},
		},
		Tracks: []tidal.Resource{
			{ID: "t-1", Attributes: tidal.Attributes{Title: "Roygbiv", ISRC: "GBAAA9800123"}},
			{ID: "t-2", Attributes: tidal.Attributes{Title: "Olson"}},
			{ID: "t-3", Attributes: tidal.Attributes{Title: "Dayvan Cowboy"}},
		},
		Artists: []tidal.Resource{
			{ID: "ar-1", Attributes: tidal.Attributes{Name: "Boards of Canada"}},
		},
	}}
}

func TestSensorCounts(t *testing.T) {
	library := libraryFixture()

	tests := []struct {
		kind SensorKind
		want int
	}{
		{SensorPlaylists, 2},
		{SensorFavoriteAlbums, 1},
		{SensorFavoriteTracks, 3},
		{SensorFavoriteArtists, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			sensor := NewSensor(tt.kind, library)
			if got := sensor.Count(); got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSensorProjections(t *testing.T) {
	library := libraryFixture()

	playlists := NewSensor(SensorPlaylists, library).Items()
	if len(playlists) != 2 {
		t.Fatalf("playlists sensor has %d items, want 2", len(playlists))
	}
	if playlists[0].ID != "pl-1" || playlists[0].Name != "Focus" || playlists[0].Description != "deep work" {
		t.Errorf("playlist item = %+v, want id/name/description projection", playlists[0])
	}
	if playlists[0].Title != "" || playlists[0].Barcode != "" || playlists[0].ISRC != "" {
		t.Errorf("playlist item leaked foreign fields: %+v", playlists[0])
	}

	albums := NewSensor(SensorFavoriteAlbums, library).Items()
	if albums[0].Title != "Geogaddi" || albums[0].Barcode != "5021603094123" {
		t.Errorf("album item = %+v, want title/barcode projection", albums[0])
	}
	if albums[0].Name != "" || albums[0].Description != "" {
		t.Errorf("album item leaked foreign fields: %+v", albums[0])
	}

	tracks := NewSensor(SensorFavoriteTracks, library).Items()
	if tracks[0].Title != "Roygbiv" || tracks[0].ISRC != "GBAAA9800123" {
		t.Errorf("track item = %+v, want title/isrc projection", tracks[0])
	}

	artists := NewSensor(SensorFavoriteArtists, library).Items()
	if artists[0].Name != "Boards of Canada" {
		t.Errorf("artist item = %+v, want name projection", artists[0])
	}
}

func TestSensorReadsLiveSnapshot(t *testing.T) {
	library := &fakeLibrary{snap: &coordinator.Snapshot{}}
	sensor := NewSensor(SensorPlaylists, library)

	if got := sensor.Count(); got != 0 {
		t.Fatalf("Count() = %d on empty library, want 0", got)
	}

	// The sensor reflects whatever the library currently holds; it caches
	// nothing between reads.
	library.snap = &coordinator.Snapshot{
		Playlists: []tidal.Resource{{ID: "pl-1"}},
	}
	if got := sensor.Count(); got != 1 {
		t.Errorf("Count() = %d after snapshot swap, want 1", got)
	}
}

func TestAllSensors(t *testing.T) {
	sensors := AllSensors(libraryFixture())
	if len(sensors) != 4 {
		t.Fatalf("AllSensors() returned %d sensors, want 4", len(sensors))
	}

	wantKinds := map[SensorKind]string{
		SensorPlaylists:       "Playlists",
		SensorFavoriteAlbums:  "Favorite Albums",
		SensorFavoriteTracks:  "Favorite Tracks",
		SensorFavoriteArtists: "Favorite Artists",
	}
	for _, sensor := range sensors {
		wantName, ok := wantKinds[sensor.Kind()]
		if !ok {
			t.Errorf("unexpected sensor kind %s", sensor.Kind())
			continue
		}
		if sensor.Name() != wantName {
			t.Errorf("sensor %s name = %q, want %q", sensor.Kind(), sensor.Name(), wantName)
		}
		delete(wantKinds, sensor.Kind())
	}
	if len(wantKinds) != 0 {
		t.Errorf("missing sensor kinds: %v", wantKinds)
	}
}
