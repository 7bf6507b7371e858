package service

import (
	"basegraph.app/siemd/core/config"
	"basegraph.app/siemd/internal/ingest"
	"basegraph.app/siemd/internal/lock"
	"basegraph.app/siemd/internal/store"
)

type Services struct {
	stores     *store.Stores
	txRunner   TxRunner
	normalizer *ingest.Normalizer
	locker     lock.Locker
	observer   IngestObserver
	cfg        config.Config

	metadata MetadataService
}

func NewServices(stores *store.Stores, txRunner TxRunner, normalizer *ingest.Normalizer, locker lock.Locker, observer IngestObserver, cfg config.Config) *Services {
	return &Services{
		stores:     stores,
		txRunner:   txRunner,
		normalizer: normalizer,
		locker:     locker,
		observer:   observer,
		cfg:        cfg,
		metadata:   NewMetadataService(cfg.Ingest.LogDir, stores.Events(), stores.FileOffsets(), cfg.Metadata.CacheTTL),
	}
}

func (s *Services) Events() EventService {
	return NewEventService(s.stores.Events())
}

// Metadata returns a shared instance so its cache survives across requests.
func (s *Services) Metadata() MetadataService {
	return s.metadata
}

func (s *Services) Ingest() IngestService {
	return NewIngestService(s.txRunner, s.normalizer, s.locker, s.observer, IngestServiceConfig{
		Extension: s.cfg.Ingest.Extension,
	})
}

func (s *Services) Auth() AuthService {
	return NewAuthService(AuthServiceConfig{
		AdminPasswordHash: s.cfg.Auth.AdminPasswordHash,
		JWTSecret:         s.cfg.Auth.JWTSecret,
		TTL:               s.cfg.Auth.JWTTTL,
	})
}
