package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tidalbridge/tidalbridge/internal/bridge"
	"github.com/tidalbridge/tidalbridge/internal/entity"
	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

// Handlers holds the HTTP handlers for the API.
type Handlers struct {
	library Library
	player  *entity.Player
	actions *bridge.Service
	sensors map[entity.SensorKind]*entity.Sensor
}

// NewHandlers creates the API handlers.
func NewHandlers(library Library, player *entity.Player, actions *bridge.Service) *Handlers {
	sensors := make(map[entity.SensorKind]*entity.Sensor)
	for _, sensor := range entity.AllSensors(library) {
		sensors[sensor.Kind()] = sensor
	}

	return &Handlers{
		library: library,
		player:  player,
		actions: actions,
		sensors: sensors,
	}
}

// serviceRequest is the body accepted by the service dispatch endpoint.
// Each service reads only the fields it needs.
type serviceRequest struct {
	PlaylistID  string   `json:"playlist_id"`
	AlbumID     string   `json:"album_id"`
	TrackID     string   `json:"track_id"`
	ArtistID    string   `json:"artist_id"`
	TrackIDs    []string `json:"track_ids"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
}

// Health reports liveness and the coordinator's view of the library.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.library.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"library": map[string]any{
			"state":      h.library.State(),
			"stale":      h.library.Stale(),
			"fetched_at": fetchedAt(snap.FetchedAt),
		},
	})
}

// Library returns every kind in the current snapshot.
func (h *Handlers) Library(w http.ResponseWriter, r *http.Request) {
	snap := h.library.Current()

	counts := make(map[string]int, len(h.sensors))
	body := map[string]any{
		"stale":      h.library.Stale(),
		"fetched_at": fetchedAt(snap.FetchedAt),
		"counts":     counts,
	}

	for kind, sensor := range h.sensors {
		body[string(kind)] = sensor.Items()
		counts[string(kind)] = sensor.Count()
	}

	writeJSON(w, http.StatusOK, body)
}

// libraryKinds maps URL path kinds to sensors.
var libraryKinds = map[string]entity.SensorKind{
	"playlists": entity.SensorPlaylists,
	"albums":    entity.SensorFavoriteAlbums,
	"tracks":    entity.SensorFavoriteTracks,
	"artists":   entity.SensorFavoriteArtists,
}

// LibraryKind returns one kind of the current snapshot.
func (h *Handlers) LibraryKind(w http.ResponseWriter, r *http.Request) {
	kind, ok := libraryKinds[chi.URLParam(r, "kind")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("unknown library kind %q", chi.URLParam(r, "kind")),
		})
		return
	}

	sensor := h.sensors[kind]
	writeJSON(w, http.StatusOK, map[string]any{
		"kind":  sensor.Kind(),
		"count": sensor.Count(),
		"items": sensor.Items(),
	})
}

// PlayerStatus returns the player's current state.
func (h *Handlers) PlayerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.player.Status())
}

// PlayerCommand executes a playback command and returns the updated state.
func (h *Handlers) PlayerCommand(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")

	switch command {
	case "play":
		h.player.Play()
	case "pause":
		h.player.Pause()
	case "stop":
		h.player.Stop()
	case "next":
		h.player.NextTrack()
	case "previous":
		h.player.PreviousTrack()

	case "volume":
		var body struct {
			Level float64 `json:"level"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if err := h.player.SetVolume(body.Level); err != nil {
			writeError(w, err)
			return
		}

	case "mute":
		var body struct {
			Muted bool `json:"muted"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		h.player.SetMuted(body.Muted)

	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown player command %q", command),
		})
		return
	}

	writeJSON(w, http.StatusOK, h.player.Status())
}

// Browse returns the media tree node for the id query parameter; without
// one it returns the root.
func (h *Handlers) Browse(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.player.Browse(r.URL.Query().Get("id")))
}

// Search runs a catalog search.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	searchType := r.URL.Query().Get("type")

	results, err := h.actions.Search(r.Context(), query, searchType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Service dispatches one named service call.
func (h *Handlers) Service(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "service")

	var req serviceRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	ctx := r.Context()

	switch name {
	case "play_track":
		h.respond(w, h.actions.PlayTrack(ctx, req.TrackID))
	case "play_playlist":
		h.respond(w, h.actions.PlayPlaylist(ctx, req.PlaylistID))
	case "play_album":
		h.respond(w, h.actions.PlayAlbum(ctx, req.AlbumID))
	case "play_artist":
		h.respond(w, h.actions.PlayArtist(ctx, req.ArtistID))
	case "add_to_playlist":
		h.respond(w, h.actions.AddToPlaylist(ctx, req.PlaylistID, req.TrackIDs))
	case "remove_from_playlist":
		h.respond(w, h.actions.RemoveFromPlaylist(ctx, req.PlaylistID, req.TrackIDs))
	case "like_track":
		h.respond(w, h.actions.LikeTrack(ctx, req.TrackID))
	case "unlike_track":
		h.respond(w, h.actions.UnlikeTrack(ctx, req.TrackID))
	case "like_album":
		h.respond(w, h.actions.LikeAlbum(ctx, req.AlbumID))
	case "unlike_album":
		h.respond(w, h.actions.UnlikeAlbum(ctx, req.AlbumID))

	case "create_playlist":
		playlist, err := h.actions.CreatePlaylist(ctx, req.Name, req.Description)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"status": "ok",
			"playlist": map[string]string{
				"id":   playlist.ID,
				"name": playlist.Attributes.Name,
			},
		})

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("unknown service %q", name),
		})
	}
}

// Refresh triggers an immediate library refresh. The response reports
// whether a cycle actually ran; one already in flight drops the request.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	ran, err := h.library.RefreshNow(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"refreshed": ran})
}

func (h *Handlers) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps client errors onto HTTP statuses: invalid input to 400,
// rejected credentials to 401, rate limiting to 429 with the Retry-After
// hint echoed, and upstream trouble to 502.
func writeError(w http.ResponseWriter, err error) {
	var (
		authErr *tidal.AuthError
		rateErr *tidal.RateLimitError
		connErr *tidal.ConnectionError
		apiErr  *tidal.APIError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tidal.ErrInvalidInput), errors.Is(err, entity.ErrUnsupportedMedia):
		status = http.StatusBadRequest
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &rateErr):
		status = http.StatusTooManyRequests
		if rateErr.RetryAfter > 0 {
			seconds := int(rateErr.RetryAfter / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
	case errors.As(err, &connErr), errors.As(err, &apiErr):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func fetchedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
