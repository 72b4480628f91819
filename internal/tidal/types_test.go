package tidal

import (
	"encoding/json"
	"testing"
)

func TestResourceListUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantIDs []string
	}{
		{
			name:    "array of resources",
			payload: `{"data":[{"id":"a","type":"tracks"},{"id":"b","type":"tracks"}]}`,
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "single resource object",
			payload: `{"data":{"id":"solo","type":"users"}}`,
			wantIDs: []string{"solo"},
		},
		{
			name:    "null data",
			payload: `{"data":null}`,
			wantIDs: nil,
		},
		{
			name:    "missing data",
			payload: `{}`,
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc Document
			if err := json.Unmarshal([]byte(tt.payload), &doc); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if len(doc.Data) != len(tt.wantIDs) {
				t.Fatalf("got %d resources, want %d", len(doc.Data), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if doc.Data[i].ID != id {
					t.Errorf("Data[%d].ID = %s, want %s", i, doc.Data[i].ID, id)
				}
			}
		})
	}
}

func TestDocumentMerged(t *testing.T) {
	payload := `{
		"data": [
			{"id": "p1", "type": "playlists"},
			{"id": "p2", "type": "playlists"}
		],
		"included": [
			{"id": "p2", "type": "playlists", "attributes": {"name": "Late Nights"}},
			{"id": "p1", "type": "playlists", "attributes": {"name": "Morning Run"}}
		]
	}`

	var doc Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	merged := doc.Merged()
	if len(merged) != 2 {
		t.Fatalf("Merged() returned %d resources, want 2", len(merged))
	}

	// Data ordering wins; attributes come from the included section.
	if merged[0].ID != "p1" || merged[0].Attributes.Name != "Morning Run" {
		t.Errorf("merged[0] = %s/%q, want p1/Morning Run", merged[0].ID, merged[0].Attributes.Name)
	}
	if merged[1].ID != "p2" || merged[1].Attributes.Name != "Late Nights" {
		t.Errorf("merged[1] = %s/%q, want p2/Late Nights", merged[1].ID, merged[1].Attributes.Name)
	}
}

func TestDocumentMerged_MissingInclude(t *testing.T) {
	doc := Document{
		Data: ResourceList{{ID: "x", Type: "tracks"}},
		Included: []Resource{
			{ID: "y", Type: "tracks", Attributes: Attributes{Title: "Other"}},
		},
	}

	merged := doc.Merged()
	if len(merged) != 1 {
		t.Fatalf("Merged() returned %d resources, want 1", len(merged))
	}
	if merged[0].ID != "x" || merged[0].Attributes.Title != "" {
		t.Errorf("merged[0] = %s/%q, want bare identifier x", merged[0].ID, merged[0].Attributes.Title)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		res  Resource
		want string
	}{
		{"name preferred", Resource{Attributes: Attributes{Name: "Artist", Title: "Ignored"}}, "Artist"},
		{"title fallback", Resource{Attributes: Attributes{Title: "Song"}}, "Song"},
		{"both empty", Resource{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelationshipIDs(t *testing.T) {
	res := Resource{
		Relationships: map[string]Relationship{
			"items": {Data: ResourceList{{ID: "t1", Type: "tracks"}, {ID: "t2", Type: "tracks"}}},
		},
	}

	ids := res.RelationshipIDs("items")
	if len(ids) != 2 || ids[0] != "t1" || ids[1] != "t2" {
		t.Errorf("RelationshipIDs() = %v, want [t1 t2]", ids)
	}

	if ids := res.RelationshipIDs("absent"); ids != nil {
		t.Errorf("RelationshipIDs(absent) = %v, want nil", ids)
	}
}

func TestCoverURL(t *testing.T) {
	tests := []struct {
		name string
		res  Resource
		want string
	}{
		{
			name: "largest size preferred",
			res: Resource{
				Relationships: map[string]Relationship{
					"coverArt": {Data: ResourceList{{
						Attributes: Attributes{URLXL: "xl.jpg", URLS: "s.jpg"},
					}}},
				},
			},
			want: "xl.jpg",
		},
		{
			name: "falls through to smallest",
			res: Resource{
				Relationships: map[string]Relationship{
					"coverArt": {Data: ResourceList{{
						Attributes: Attributes{URLS: "s.jpg"},
					}}},
				},
			},
			want: "s.jpg",
		},
		{
			name: "no cover art",
			res:  Resource{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.CoverURL(); got != tt.want {
				t.Errorf("CoverURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindSingular(t *testing.T) {
	if got := KindPlaylists.Singular(); got != "playlist" {
		t.Errorf("Singular() = %q, want playlist", got)
	}
	if got := KindTracks.Singular(); got != "track" {
		t.Errorf("Singular() = %q, want track", got)
	}
}
