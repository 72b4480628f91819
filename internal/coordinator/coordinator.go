// Package coordinator keeps a periodically refreshed, in-memory snapshot of
// a user's Tidal library.
//
// One refresh cycle fetches playlists, favorite albums, favorite tracks, and
// favorite artists, then swaps the whole snapshot in a single atomic store.
// Readers never see a half-updated library. Cycles run on a fixed interval;
// a tick that arrives while a refresh is still in flight is dropped rather
// than queued. Rate limiting and network trouble shorten the next attempt
// via exponential backoff, and an authentication failure stops scheduling
// entirely until Resume is called with working credentials.
package coordinator

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"

	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

var tracer = otel.Tracer("tidalbridge/coordinator")

const (
	// DefaultInterval is how often the library is refreshed.
	DefaultInterval = 30 * time.Second

	// fetchTimeout bounds one whole refresh cycle.
	fetchTimeout = 25 * time.Second

	initialRetryInterval = 2 * time.Second
)

// State describes what the coordinator is currently doing.
type State string

const (
	// StateIdle means the coordinator is waiting for the next tick.
	StateIdle State = "idle"
	// StateRefreshing means a refresh cycle is in flight.
	StateRefreshing State = "refreshing"
	// StateBackoff means the last cycle failed and the next attempt is
	// scheduled earlier than the regular interval.
	StateBackoff State = "backoff"
	// StateAuthFailed means credentials were rejected and scheduling is
	// suspended until Resume.
	StateAuthFailed State = "auth_failed"
)

// Client is the slice of the Tidal API the coordinator needs.
type Client interface {
	UserPlaylists(ctx context.Context) ([]tidal.Resource, error)
	UserAlbums(ctx context.Context) ([]tidal.Resource, error)
	UserTracks(ctx context.Context) ([]tidal.Resource, error)
	UserArtists(ctx context.Context) ([]tidal.Resource, error)
	Playlist(ctx context.Context, playlistID string) (*tidal.Resource, error)
	Album(ctx context.Context, albumID string) (*tidal.Resource, error)
	Track(ctx context.Context, trackID string) (*tidal.Resource, error)
}

// Snapshot is one complete view of the user's library. Snapshots are
// immutable once published; a refresh builds a new one and swaps it in
// wholesale.
type Snapshot struct {
	Playlists []tidal.Resource
	Albums    []tidal.Resource
	Tracks    []tidal.Resource
	Artists   []tidal.Resource
	FetchedAt time.Time
}

// Coordinator owns the refresh loop and the published snapshot.
type Coordinator struct {
	client   Client
	interval time.Duration

	snapshot atomic.Pointer[Snapshot]
	stale    atomic.Bool

	mu          sync.Mutex
	state       State
	delay       time.Duration
	policy      *backoff.ExponentialBackOff
	subscribers map[int]chan struct{}
	nextSubID   int
	running     bool

	resumeCh chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithInterval sets the refresh interval.
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		c.interval = d
	}
}

// New creates a coordinator around a client. The snapshot starts empty;
// call RefreshNow or Start to populate it.
func New(client Client, opts ...Option) *Coordinator {
	c := &Coordinator{
		client:      client,
		interval:    DefaultInterval,
		state:       StateIdle,
		subscribers: make(map[int]chan struct{}),
		resumeCh:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.delay = c.interval

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialRetryInterval
	policy.MaxInterval = c.interval
	c.policy = policy

	return c
}

// Start launches the refresh loop. The first cycle runs immediately so
// consumers have data as soon as possible.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.run()
}

// Stop shuts the refresh loop down and waits for it to exit. The published
// snapshot stays readable after Stop.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	done := c.done
	c.mu.Unlock()

	<-done
}

func (c *Coordinator) run() {
	defer close(c.done)

	// Refresh immediately unless a caller already primed the snapshot (or
	// tried to) before Start; a pending backoff delay stays honored.
	c.mu.Lock()
	primed := c.snapshot.Load() != nil || c.state != StateIdle
	c.mu.Unlock()
	if !primed {
		c.refresh(context.Background())
	}

	for {
		if c.State() == StateAuthFailed {
			select {
			case <-c.resumeCh:
				c.refresh(context.Background())
				continue
			case <-c.stopCh:
				return
			}
		}

		timer := time.NewTimer(c.nextDelay())
		select {
		case <-timer.C:
			c.refresh(context.Background())
		case <-c.resumeCh:
			timer.Stop()
			c.refresh(context.Background())
		case <-c.stopCh:
			timer.Stop()
			return
		}
	}
}

// RefreshNow runs one refresh cycle on the caller's goroutine. It reports
// whether the cycle actually ran: a cycle already in flight, or suspended
// scheduling after an auth failure, drops the request and returns false
// with a nil error.
func (c *Coordinator) RefreshNow(ctx context.Context) (bool, error) {
	return c.refresh(ctx)
}

// RequestRefresh asks for a refresh without waiting for the result. Callers
// use it to nudge the library after a mutation.
func (c *Coordinator) RequestRefresh() {
	go func() {
		_, _ = c.refresh(context.Background())
	}()
}

// Resume clears the auth-failed state and triggers an immediate refresh.
// Call it after credentials have been reconfigured. It does nothing unless
// the coordinator is suspended.
func (c *Coordinator) Resume() {
	c.mu.Lock()
	if c.state != StateAuthFailed {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.delay = c.interval
	c.policy.Reset()
	c.mu.Unlock()

	select {
	case c.resumeCh <- struct{}{}:
	default:
	}
}

// refresh runs one cycle: gate, fetch, publish or record the failure.
func (c *Coordinator) refresh(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.state == StateRefreshing || c.state == StateAuthFailed {
		c.mu.Unlock()
		return false, nil
	}
	c.state = StateRefreshing
	c.mu.Unlock()

	ctx, span := tracer.Start(ctx, "library.refresh")
	snap, err := c.fetch(ctx)
	if err != nil {
		span.RecordError(err)
	}
	span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		// The previous snapshot stays published, only marked stale.
		c.stale.Store(true)

		var authErr *tidal.AuthError
		if errors.As(err, &authErr) {
			c.state = StateAuthFailed
			log.Printf("library refresh failed, suspending until credentials are reconfigured: %v", err)
			return false, err
		}

		if retryable(err) {
			c.state = StateBackoff
			c.delay = c.retryDelay(err)
			log.Printf("library refresh failed, retrying in %s: %v", c.delay.Round(time.Millisecond), err)
			return false, err
		}

		c.state = StateIdle
		c.delay = c.interval
		log.Printf("library refresh failed: %v", err)
		return false, err
	}

	c.snapshot.Store(snap)
	c.stale.Store(false)
	c.policy.Reset()
	c.state = StateIdle
	c.delay = c.interval
	c.notifyLocked()
	return true, nil
}

// fetch builds a fresh snapshot. The first failure aborts the whole cycle
// so a partially fetched library is never published.
func (c *Coordinator) fetch(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	snap := &Snapshot{FetchedAt: time.Now()}

	var err error
	if snap.Playlists, err = c.client.UserPlaylists(ctx); err != nil {
		return nil, err
	}
	if snap.Albums, err = c.client.UserAlbums(ctx); err != nil {
		return nil, err
	}
	if snap.Tracks, err = c.client.UserTracks(ctx); err != nil {
		return nil, err
	}
	if snap.Artists, err = c.client.UserArtists(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

// retryable reports whether the next attempt should come earlier than the
// regular interval.
func retryable(err error) bool {
	var rateErr *tidal.RateLimitError
	var connErr *tidal.ConnectionError
	return errors.As(err, &rateErr) || errors.As(err, &connErr)
}

// retryDelay picks the backoff delay, never earlier than the server's
// Retry-After hint.
func (c *Coordinator) retryDelay(err error) time.Duration {
	delay := c.policy.NextBackOff()

	var rateErr *tidal.RateLimitError
	if errors.As(err, &rateErr) && rateErr.RetryAfter > delay {
		delay = rateErr.RetryAfter
	}
	return delay
}

func (c *Coordinator) nextDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delay
}

// State returns what the coordinator is currently doing.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stale reports whether the published snapshot survived a failed refresh
// and may no longer match the remote library.
func (c *Coordinator) Stale() bool {
	return c.stale.Load()
}

// Current returns the published snapshot. It never returns nil; before the
// first successful refresh the snapshot is empty.
func (c *Coordinator) Current() *Snapshot {
	if snap := c.snapshot.Load(); snap != nil {
		return snap
	}
	return &Snapshot{}
}

// Playlists returns the playlists in the current snapshot.
func (c *Coordinator) Playlists() []tidal.Resource {
	return c.Current().Playlists
}

// Albums returns the favorite albums in the current snapshot.
func (c *Coordinator) Albums() []tidal.Resource {
	return c.Current().Albums
}

// Tracks returns the favorite tracks in the current snapshot.
func (c *Coordinator) Tracks() []tidal.Resource {
	return c.Current().Tracks
}

// Artists returns the favorite artists in the current snapshot.
func (c *Coordinator) Artists() []tidal.Resource {
	return c.Current().Artists
}

// Subscribe registers for snapshot change notifications. The channel holds
// one pending notification; publishes while the subscriber is busy collapse
// into it. Callers must Unsubscribe when done.
func (c *Coordinator) Subscribe() (int, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan struct{}, 1)
	c.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscription.
func (c *Coordinator) Unsubscribe(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, id)
}

func (c *Coordinator) notifyLocked() {
	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
