package entity

// BrowseNode is one entry in the media browse tree.
type BrowseNode struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Title     string       `json:"title"`
	CanPlay   bool         `json:"can_play"`
	CanExpand bool         `json:"can_expand"`
	Children  []BrowseNode `json:"children,omitempty"`
}

// Browse returns the media tree at the given node. An empty contentID is
// the root with the playlist, album, and track categories; a category id
// expands into the snapshot's entries for that kind. Unknown ids fall back
// to the root.
func (p *Player) Browse(contentID string) BrowseNode {
	switch contentID {
	case "":
		root := p.browseRoot()
		root.Children = []BrowseNode{
			{ID: "playlists", Type: "playlists", Title: "Playlists", CanExpand: true},
			{ID: "albums", Type: "albums", Title: "Albums", CanExpand: true},
			{ID: "tracks", Type: "tracks", Title: "Tracks", CanExpand: true},
		}
		return root

	case "playlists":
		snap := p.library.Current()
		node := BrowseNode{ID: "playlists", Type: "playlists", Title: "Playlists", CanExpand: true}
		for _, playlist := range snap.Playlists {
			node.Children = append(node.Children, BrowseNode{
				ID:      playlist.ID,
				Type:    string(MediaTypePlaylist),
				Title:   displayOrUnknown(playlist.Attributes.Name),
				CanPlay: true,
			})
		}
		return node

	case "albums":
		snap := p.library.Current()
		node := BrowseNode{ID: "albums", Type: "albums", Title: "Albums", CanExpand: true}
		for _, album := range snap.Albums {
			node.Children = append(node.Children, BrowseNode{
				ID:      album.ID,
				Type:    string(MediaTypeAlbum),
				Title:   displayOrUnknown(album.Attributes.Title),
				CanPlay: true,
			})
		}
		return node

	case "tracks":
		snap := p.library.Current()
		node := BrowseNode{ID: "tracks", Type: "tracks", Title: "Tracks", CanExpand: true}
		for _, track := range snap.Tracks {
			node.Children = append(node.Children, BrowseNode{
				ID:      track.ID,
				Type:    string(MediaTypeTrack),
				Title:   displayOrUnknown(track.Attributes.Title),
				CanPlay: true,
			})
		}
		return node

	default:
		return p.browseRoot()
	}
}

func (p *Player) browseRoot() BrowseNode {
	return BrowseNode{ID: "root", Type: "root", Title: "Tidal", CanExpand: true}
}

func displayOrUnknown(title string) string {
	if title == "" {
		return "Unknown"
	}
	return title
}
