package bridge

import (
	"context"
	"fmt"

	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

// SearchHit is one search result entry.
type SearchHit struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// SearchResults groups search hits by kind. Slices for kinds the API did
// not return stay empty.
type SearchResults struct {
	Query     string      `json:"query"`
	Type      string      `json:"type,omitempty"`
	TopHits   []SearchHit `json:"top_hits,omitempty"`
	Tracks    []SearchHit `json:"tracks,omitempty"`
	Albums    []SearchHit `json:"albums,omitempty"`
	Artists   []SearchHit `json:"artists,omitempty"`
	Playlists []SearchHit `json:"playlists,omitempty"`
}

// Search queries the catalog. searchType optionally narrows results to one
// kind (albums, artists, playlists, tracks).
func (s *Service) Search(ctx context.Context, query, searchType string) (*SearchResults, error) {
	doc, err := s.client.Search(ctx, query, searchType)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	return newSearchResults(query, searchType, doc), nil
}

// newSearchResults projects the search response document. The API links
// hits by id under the search result's relationships and side-loads the
// full resources, so titles are resolved against the included section.
func newSearchResults(query, searchType string, doc *tidal.Document) *SearchResults {
	results := &SearchResults{Query: query, Type: searchType}

	result := doc.Data.First()
	if result == nil {
		return results
	}

	included := make(map[string]tidal.Resource, len(doc.Included))
	for _, res := range doc.Included {
		included[res.Type+"/"+res.ID] = res
	}

	hits := func(relationship string) []SearchHit {
		data := result.Relationships[relationship].Data
		if len(data) == 0 {
			return nil
		}
		out := make([]SearchHit, 0, len(data))
		for _, linked := range data {
			hit := SearchHit{ID: linked.ID, Type: linked.Type, Title: linked.DisplayName()}
			if full, ok := included[linked.Type+"/"+linked.ID]; ok && hit.Title == "" {
				hit.Title = full.DisplayName()
			}
			out = append(out, hit)
		}
		return out
	}

	results.TopHits = hits("topHits")
	results.Tracks = hits("tracks")
	results.Albums = hits("albums")
	results.Artists = hits("artists")
	results.Playlists = hits("playlists")
	return results
}
