package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"basegraph.app/siemd/core/config"
	"basegraph.app/siemd/internal/http/router"
	"basegraph.app/siemd/internal/metrics"
	"basegraph.app/siemd/internal/service"
	"basegraph.app/siemd/internal/store"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

var _ = Describe("SetupRoutes", func() {
	var engine *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		hash, err := bcrypt.GenerateFromPassword([]byte("admin-pw"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.Config{
			Ingest: config.IngestConfig{LogDir: GinkgoT().TempDir(), Extension: ".jsonl", BatchSize: 500, MaxBatchesPerFile: 20},
			Auth:   config.AuthConfig{AdminPasswordHash: string(hash), JWTSecret: "secret", JWTTTL: time.Hour},
		}
		services := service.NewServices(store.NewStores(nil), nil, nil, nil, nil, cfg)

		engine = gin.New()
		router.SetupRoutes(engine, services, router.RouterConfig{
			LogDir:            cfg.Ingest.LogDir,
			Extension:         cfg.Ingest.Extension,
			BatchSize:         cfg.Ingest.BatchSize,
			MaxBatchesPerFile: cfg.Ingest.MaxBatchesPerFile,
			DB:                okPinger{},
			Metrics:           metrics.New().HTTPHandler(),
		})
	})

	do := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	It("serves health and metrics without auth", func() {
		Expect(do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code).To(Equal(http.StatusOK))

		w := do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("siemd_ingest_events_total"))
	})

	It("guards the api with an admin token", func() {
		for _, path := range []string{"/api/v1/events", "/api/v1/events/1", "/api/v1/metadata/apps", "/api/v1/metadata/schema"} {
			w := do(httptest.NewRequest(http.MethodGet, path, nil))
			Expect(w.Code).To(Equal(http.StatusUnauthorized), path)
		}
		Expect(do(httptest.NewRequest(http.MethodPost, "/api/v1/ingest/run", nil)).Code).To(Equal(http.StatusUnauthorized))
	})

	It("lets a logged-in admin reach the api", func() {
		login := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"password":"admin-pw"}`))
		login.Header.Set("Content-Type", "application/json")
		w := do(login)
		Expect(w.Code).To(Equal(http.StatusOK))

		var token struct {
			AccessToken string `json:"access_token"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &token)).To(Succeed())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/metadata/apps", nil)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		w = do(req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("[]"))
	})
})
