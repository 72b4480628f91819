package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tidalbridge/tidalbridge/internal/bridge"
	"github.com/tidalbridge/tidalbridge/internal/coordinator"
	"github.com/tidalbridge/tidalbridge/internal/entity"
	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

type fakeLibrary struct {
	snap  *coordinator.Snapshot
	stale bool
}

func (f *fakeLibrary) Current() *coordinator.Snapshot {
	if f.snap == nil {
		return &coordinator.Snapshot{}
	}
	return f.snap
}

func (f *fakeLibrary) PlaylistTracks(ctx context.Context, playlistID string) ([]tidal.Resource, error) {
	return nil, nil
}

func (f *fakeLibrary) AlbumTracks(ctx context.Context, albumID string) ([]tidal.Resource, error) {
	return nil, nil
}

func (f *fakeLibrary) Stale() bool { return f.stale }

type fakePlayer struct {
	lastType entity.MediaType
	lastID   string
	status   entity.Status
	err      error
}

func (f *fakePlayer) PlayMedia(ctx context.Context, mediaType entity.MediaType, mediaID string) error {
	if f.err != nil {
		return f.err
	}
	f.lastType = mediaType
	f.lastID = mediaID
	return nil
}

func (f *fakePlayer) Status() entity.Status { return f.status }

type fakeSearcher struct {
	results *bridge.SearchResults
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query, searchType string) (*bridge.SearchResults, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestLibraryListHandler(t *testing.T) {
	library := &fakeLibrary{
		stale: true,
		snap: &coordinator.Snapshot{
			Playlists: []tidal.Resource{
				{ID: "pl-1", Attributes: tidal.Attributes{Name: "Focus", Description: "deep work"}},
				{ID: "pl-2", Attributes: tidal.Attributes{Name: "Gym"}},
			},
		},
	}

	handler := LibraryListHandler(library, entity.SensorPlaylists)
	_, result, err := handler(context.Background(), nil, LibraryListInput{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if result.Kind != "playlists" {
		t.Errorf("Kind = %q, want playlists", result.Kind)
	}
	if result.Count != 2 || len(result.Items) != 2 {
		t.Fatalf("Count = %d with %d items, want 2", result.Count, len(result.Items))
	}
	if !result.Stale {
		t.Error("Stale = false, want true")
	}
	if result.Items[0].ID != "pl-1" || result.Items[0].Name != "Focus" || result.Items[0].Description != "deep work" {
		t.Errorf("first item = %+v, want pl-1 Focus deep work", result.Items[0])
	}
}

func TestPlayContentHandler(t *testing.T) {
	player := &fakePlayer{status: entity.Status{Title: "Roygbiv"}}
	handler := PlayContentHandler(player)

	_, result, err := handler(context.Background(), nil, PlayContentInput{MediaType: " Track ", MediaID: "t-1"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if player.lastType != entity.MediaTypeTrack || player.lastID != "t-1" {
		t.Errorf("played %s %s, want track t-1", player.lastType, player.lastID)
	}
	if result.Status != "ok" || result.Title != "Roygbiv" {
		t.Errorf("result = %+v, want ok Roygbiv", result)
	}
}

func TestPlayContentHandler_TitleFallsBackToContext(t *testing.T) {
	player := &fakePlayer{status: entity.Status{Playlist: "Focus"}}
	handler := PlayContentHandler(player)

	_, result, err := handler(context.Background(), nil, PlayContentInput{MediaType: "playlist", MediaID: "pl-1"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.Title != "Focus" {
		t.Errorf("Title = %q, want Focus", result.Title)
	}
}

func TestPlayContentHandler_Error(t *testing.T) {
	wantErr := errors.New("no such track")
	handler := PlayContentHandler(&fakePlayer{err: wantErr})

	_, _, err := handler(context.Background(), nil, PlayContentInput{MediaType: "track", MediaID: "t-404"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
}

func TestSearchHandler(t *testing.T) {
	searcher := &fakeSearcher{results: &bridge.SearchResults{
		Query:  "boc",
		Tracks: []bridge.SearchHit{{ID: "t-1", Type: "tracks", Title: "Roygbiv"}},
	}}
	handler := SearchHandler(searcher)

	_, result, err := handler(context.Background(), nil, SearchInput{Query: "boc"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(result.Tracks) != 1 || result.Tracks[0].Title != "Roygbiv" {
		t.Errorf("Tracks = %+v, want one Roygbiv hit", result.Tracks)
	}
}

func TestSearchHandler_Error(t *testing.T) {
	wantErr := &tidal.RateLimitError{}
	handler := SearchHandler(&fakeSearcher{err: wantErr})

	_, _, err := handler(context.Background(), nil, SearchInput{Query: "boc"})
	var rateErr *tidal.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error = %v, want wrapped rate limit error", err)
	}
}

func TestLibraryResourceHandler(t *testing.T) {
	library := &fakeLibrary{
		stale: false,
		snap: &coordinator.Snapshot{
			Playlists: []tidal.Resource{{ID: "pl-1", Attributes: tidal.Attributes{Name: "Focus"}}},
			Tracks:    []tidal.Resource{{ID: "t-1", Attributes: tidal.Attributes{Title: "Roygbiv"}}},
		},
	}
	handler := LibraryResourceHandler(library)

	result, err := handler(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("Contents = %d entries, want 1", len(result.Contents))
	}
	content := result.Contents[0]
	if content.URI != "tidal://library" || content.MIMEType != "application/json" {
		t.Errorf("content = %s %s, want tidal://library application/json", content.URI, content.MIMEType)
	}

	var payload LibraryPayload
	if err := json.Unmarshal([]byte(content.Text), &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if len(payload.Playlists) != 1 || payload.Playlists[0].Name != "Focus" {
		t.Errorf("Playlists = %+v, want one Focus entry", payload.Playlists)
	}
	if len(payload.FavoriteTracks) != 1 || payload.FavoriteTracks[0].Title != "Roygbiv" {
		t.Errorf("FavoriteTracks = %+v, want one Roygbiv entry", payload.FavoriteTracks)
	}
}

func TestLibraryResourceHandler_UnknownURI(t *testing.T) {
	handler := LibraryResourceHandler(&fakeLibrary{})

	req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "tidal://queue"}}
	_, err := handler(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "tidal://queue") {
		t.Fatalf("error = %v, want unknown resource naming the uri", err)
	}
}
