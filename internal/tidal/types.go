package tidal

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind names a JSON:API resource type as the API spells it.
type Kind string

const (
	KindPlaylists Kind = "playlists"
	KindAlbums    Kind = "albums"
	KindTracks    Kind = "tracks"
	KindArtists   Kind = "artists"
)

// Singular returns the kind as a singular noun for messages, so errors read
// "removing favorite track" rather than "removing favorite tracks".
func (k Kind) Singular() string {
	return strings.TrimSuffix(string(k), "s")
}

// Document is the top-level JSON:API payload returned by the API. Data holds
// the primary resources; Included holds side-loaded resources requested via
// the include parameter.
type Document struct {
	Data     ResourceList `json:"data,omitempty"`
	Included []Resource   `json:"included,omitempty"`
}

// Merged returns the primary resources with attributes filled in from the
// Included section. Relationship endpoints answer with bare identifiers in
// Data and the side-loaded resources in Included; Merged joins the two by
// id and type, keeping the Data ordering.
func (d *Document) Merged() []Resource {
	if len(d.Included) == 0 {
		return d.Data
	}

	included := make(map[string]Resource, len(d.Included))
	for _, res := range d.Included {
		included[res.Type+"/"+res.ID] = res
	}

	merged := make([]Resource, 0, len(d.Data))
	for _, res := range d.Data {
		if full, ok := included[res.Type+"/"+res.ID]; ok {
			merged = append(merged, full)
			continue
		}
		merged = append(merged, res)
	}
	return merged
}

// Resource is a single JSON:API resource object.
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    Attributes              `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Attributes carries the subset of resource attributes the bridge reads.
// The API returns more; unknown fields are ignored.
type Attributes struct {
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	ISRC        string `json:"isrc,omitempty"`

	// Cover art URLs by size, present on artwork resources.
	URLXXL string `json:"urlXXL,omitempty"`
	URLXL  string `json:"urlXL,omitempty"`
	URLL   string `json:"urlL,omitempty"`
	URLM   string `json:"urlM,omitempty"`
	URLS   string `json:"urlS,omitempty"`
}

// Relationship is the linkage for one related collection. Depending on the
// endpoint the entries are bare identifiers or expanded resources.
type Relationship struct {
	Data ResourceList `json:"data,omitempty"`
}

// ResourceList accepts both the single-object and array forms of JSON:API
// "data" members, normalizing to a slice.
type ResourceList []Resource

func (l *ResourceList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	if trimmed[0] == '[' {
		var items []Resource
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var single Resource
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*l = ResourceList{single}
	return nil
}

// First returns the first resource in the list, or nil when empty.
func (l ResourceList) First() *Resource {
	if len(l) == 0 {
		return nil
	}
	return &l[0]
}

// DisplayName returns the human-readable name for any resource kind.
// Playlists and artists carry a name, albums and tracks a title.
func (r Resource) DisplayName() string {
	if r.Attributes.Name != "" {
		return r.Attributes.Name
	}
	return r.Attributes.Title
}

// RelationshipIDs returns the ids linked under the named relationship, in
// response order.
func (r Resource) RelationshipIDs(name string) []string {
	data := r.Relationships[name].Data
	if len(data) == 0 {
		return nil
	}
	ids := make([]string, 0, len(data))
	for _, linked := range data {
		ids = append(ids, linked.ID)
	}
	return ids
}

// CoverURL returns the largest cover art URL attached to the resource, or
// an empty string when none is linked.
func (r Resource) CoverURL() string {
	covers := r.Relationships["coverArt"].Data
	if len(covers) == 0 {
		return ""
	}
	a := covers[0].Attributes
	for _, u := range []string{a.URLXXL, a.URLXL, a.URLL, a.URLM, a.URLS} {
		if u != "" {
			return u
		}
	}
	return ""
}

// ResourceIdentifier is the {type, id} pair used in relationship writes.
type ResourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// newResourceBody wraps a single new resource for create requests.
type newResourceBody struct {
	Data newResource `json:"data"`
}

type newResource struct {
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// identifierBody wraps a single identifier for relationship writes that
// take one resource.
type identifierBody struct {
	Data ResourceIdentifier `json:"data"`
}

// linkageBody wraps a list of identifiers for relationship writes that take
// several resources at once.
type linkageBody struct {
	Data []ResourceIdentifier `json:"data"`
}
