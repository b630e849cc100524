package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventbeacon/internal/domain"
	"eventbeacon/pkg/metrics"
)

// DefaultRegionCacheTTL bounds how stale a cached region snapshot may get
// before the next ingest refreshes it from the GeofenceStore.
const DefaultRegionCacheTTL = 10 * time.Second

// TransitionSink receives the outcomes of an accepted location update.
// Implementations must not block: delivery to subscribers is the sink's
// concern, never the ingest call's.
type TransitionSink interface {
	PresenceUpdated(rec *domain.PresenceRecord)
	Transitioned(event *domain.Event, transition domain.TransitionEvent)
}

type regionSnapshot struct {
	regions   []*domain.GeofenceRegion
	fetchedAt time.Time
}

type locationService struct {
	events   domain.EventRepository
	presence domain.PresenceRepository
	store    domain.GeofenceStore
	locator  domain.RegionLocator
	sink     TransitionSink
	logger   *slog.Logger

	cacheTTL time.Duration
	now      func() time.Time

	keys *keyedMutex

	cacheMu sync.RWMutex
	cache   map[string]regionSnapshot
}

// LocationServiceOption configures NewLocationService.
type LocationServiceOption func(*locationService)

// WithRegionCacheTTL overrides the region snapshot staleness bound.
func WithRegionCacheTTL(ttl time.Duration) LocationServiceOption {
	return func(s *locationService) {
		s.cacheTTL = ttl
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) LocationServiceOption {
	return func(s *locationService) {
		s.now = now
	}
}

// NewLocationService creates the location ingest pipeline. Updates for the
// same (user, event) key are serialized through a keyed mutex; distinct keys
// run fully concurrently.
func NewLocationService(
	events domain.EventRepository,
	presence domain.PresenceRepository,
	store domain.GeofenceStore,
	locator domain.RegionLocator,
	sink TransitionSink,
	logger *slog.Logger,
	opts ...LocationServiceOption,
) domain.LocationService {
	s := &locationService{
		events:   events,
		presence: presence,
		store:    store,
		locator:  locator,
		sink:     sink,
		logger:   logger,
		cacheTTL: DefaultRegionCacheTTL,
		now:      time.Now,
		keys:     newKeyedMutex(),
		cache:    make(map[string]regionSnapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *locationService) UpdateLocation(ctx context.Context, eventID, userID string, lat, lng float64) (*domain.PresenceRecord, domain.PresenceStatus, error) {
	start := s.now()
	defer func() {
		metrics.ObserveIngestLatency(s.now().Sub(start).Seconds())
	}()

	if lat < -90 || lat > 90 {
		metrics.RecordLocationRejected()
		return nil, "", fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrInvalidInput)
	}
	if lng < -180 || lng > 180 {
		metrics.RecordLocationRejected()
		return nil, "", fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrInvalidInput)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("get event: %w", err)
	}

	// Serialize the read-compare-write for this participant. Two concurrent
	// updates for the same key would otherwise both compare against a stale
	// last status and double-fire or miss a transition.
	unlock := s.keys.lock(eventID + "/" + userID)
	defer unlock()

	regions, err := s.regionSnapshot(ctx, eventID)
	if err != nil {
		return nil, "", fmt.Errorf("load region snapshot: %w", err)
	}

	inside, err := s.locator.Inside(ctx, lat, lng, regions)
	if err != nil {
		return nil, "", fmt.Errorf("evaluate containment: %w", err)
	}
	status := domain.StatusOutside
	if inside {
		status = domain.StatusInside
	}

	prevStatus := domain.StatusUnknown
	if prev, err := s.presence.GetByEventAndUser(ctx, eventID, userID); err == nil {
		prevStatus = prev.Status
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("get presence record: %w", err)
	}

	now := s.now().UTC()
	rec := domain.NewPresenceRecord(eventID, userID, lat, lng, status, now)
	if err := s.presence.Upsert(ctx, rec); err != nil {
		// No partial state: the stored record is unchanged and no
		// transition is emitted.
		return nil, "", fmt.Errorf("persist presence record: %w", err)
	}

	metrics.RecordLocationUpdate(string(status))
	s.sink.PresenceUpdated(rec)

	// A first fix (UNKNOWN -> anything) establishes status without alerting.
	if prevStatus != domain.StatusUnknown && prevStatus != status {
		metrics.RecordTransition()
		s.sink.Transitioned(event, domain.TransitionEvent{
			EventID:   eventID,
			UserID:    userID,
			From:      prevStatus,
			To:        status,
			Timestamp: now,
		})
	}

	return rec, status, nil
}

func (s *locationService) ListEventLocations(ctx context.Context, eventID string) ([]*domain.PresenceRecord, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	recs, err := s.presence.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list presence records: %w", err)
	}
	return recs, nil
}

func (s *locationService) GetMyLocation(ctx context.Context, eventID, userID string) (*domain.PresenceRecord, error) {
	rec, err := s.presence.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get presence record: %w", err)
	}
	return rec, nil
}

func (s *locationService) RemovePresence(ctx context.Context, eventID, userID string) error {
	unlock := s.keys.lock(eventID + "/" + userID)
	defer unlock()

	if err := s.presence.Delete(ctx, eventID, userID); err != nil {
		return fmt.Errorf("delete presence record: %w", err)
	}
	return nil
}

// regionSnapshot returns the event's regions, refreshing the cached copy
// once it is older than the staleness bound so newly created or edited
// regions take effect promptly.
func (s *locationService) regionSnapshot(ctx context.Context, eventID string) ([]*domain.GeofenceRegion, error) {
	s.cacheMu.RLock()
	snap, ok := s.cache[eventID]
	s.cacheMu.RUnlock()
	if ok && s.now().Sub(snap.fetchedAt) < s.cacheTTL {
		return snap.regions, nil
	}

	regions, err := s.store.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[eventID] = regionSnapshot{regions: regions, fetchedAt: s.now()}
	s.cacheMu.Unlock()

	return regions, nil
}
