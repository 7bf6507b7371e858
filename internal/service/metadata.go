package service

import (
	"context"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/patrickmn/go-cache"

	"basegraph.app/siemd/internal/ingest"
	"basegraph.app/siemd/internal/model"
	"basegraph.app/siemd/internal/store"
)

const (
	appsCacheKey       = "apps"
	eventTypesCacheKey = "event_types:"
)

type MetadataService interface {
	// ListApps lists the app directories of the log root. It returns
	// ingest.ErrLogDirUnavailable when the root cannot be read.
	ListApps(ctx context.Context) ([]string, error)
	// ListEventTypes lists distinct stored event types, optionally for one app.
	ListEventTypes(ctx context.Context, app *string) ([]string, error)
	ListFiles(ctx context.Context) ([]model.FileOffset, error)
	IncomingSchema() *jsonschema.Schema
}

type metadataService struct {
	logDir  string
	events  store.EventStore
	offsets store.FileOffsetStore
	cache   *cache.Cache
	schema  *jsonschema.Schema
}

// NewMetadataService caches results for ttl; ttl <= 0 disables caching.
func NewMetadataService(logDir string, events store.EventStore, offsets store.FileOffsetStore, ttl time.Duration) MetadataService {
	s := &metadataService{
		logDir:  logDir,
		events:  events,
		offsets: offsets,
		schema:  ingest.IncomingSchema(),
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *metadataService) ListApps(_ context.Context) ([]string, error) {
	if apps, ok := s.cached(appsCacheKey); ok {
		return apps, nil
	}
	apps, err := ingest.ListApps(s.logDir)
	if err != nil {
		return nil, err
	}
	s.store(appsCacheKey, apps)
	return apps, nil
}

func (s *metadataService) ListEventTypes(ctx context.Context, app *string) ([]string, error) {
	key := eventTypesCacheKey + "*"
	if app != nil {
		key = eventTypesCacheKey + "=" + *app
	}
	if types, ok := s.cached(key); ok {
		return types, nil
	}
	types, err := s.events.ListEventTypes(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("listing event types: %w", err)
	}
	s.store(key, types)
	return types, nil
}

func (s *metadataService) ListFiles(ctx context.Context) ([]model.FileOffset, error) {
	files, err := s.offsets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing file offsets: %w", err)
	}
	return files, nil
}

func (s *metadataService) IncomingSchema() *jsonschema.Schema {
	return s.schema
}

func (s *metadataService) cached(key string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	values, ok := v.([]string)
	return values, ok
}

func (s *metadataService) store(key string, values []string) {
	if s.cache != nil {
		s.cache.SetDefault(key, values)
	}
}
