package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/siemd/internal/model"
	"basegraph.app/siemd/internal/worker"
)

type fakeIngester struct {
	calls atomic.Int32
	fn    func(ctx context.Context, call int32) error
}

func (f *fakeIngester) IngestOnce(ctx context.Context, _ string, _, _ int) (model.IngestResult, error) {
	n := f.calls.Add(1)
	if f.fn != nil {
		return model.IngestResult{}, f.fn(ctx, n)
	}
	return model.IngestResult{}, nil
}

var _ = Describe("Worker", func() {
	var (
		ingester *fakeIngester
		cfg      worker.Config
	)

	BeforeEach(func() {
		ingester = &fakeIngester{}
		cfg = worker.Config{
			LogDir:            "/logs",
			PollInterval:      10 * time.Millisecond,
			BatchSize:         500,
			MaxBatchesPerFile: 20,
		}
	})

	start := func(ctx context.Context, w *worker.Worker) chan error {
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
		return done
	}

	It("should run a pass immediately and then on every tick", func() {
		cfg.PollInterval = time.Hour
		w := worker.New(ingester, cfg)
		done := start(context.Background(), w)

		Eventually(ingester.calls.Load).Should(Equal(int32(1)))
		Consistently(ingester.calls.Load, 50*time.Millisecond).Should(Equal(int32(1)))

		w.Stop()
		Expect(<-done).To(Succeed())
	})

	It("should keep polling", func() {
		w := worker.New(ingester, cfg)
		done := start(context.Background(), w)

		Eventually(ingester.calls.Load).Should(BeNumerically(">=", 3))

		w.Stop()
		Expect(<-done).To(Succeed())
	})

	It("should keep running after a failed or panicking pass", func() {
		ingester.fn = func(_ context.Context, call int32) error {
			switch call {
			case 1:
				return errors.New("discovery failed")
			case 2:
				panic("boom")
			}
			return nil
		}
		w := worker.New(ingester, cfg)
		done := start(context.Background(), w)

		Eventually(ingester.calls.Load).Should(BeNumerically(">=", 3))

		w.Stop()
		Expect(<-done).To(Succeed())
	})

	It("should cancel the running pass on Stop", func() {
		cfg.PollInterval = time.Hour
		entered := make(chan struct{})
		ingester.fn = func(ctx context.Context, _ int32) error {
			close(entered)
			<-ctx.Done()
			return ctx.Err()
		}
		w := worker.New(ingester, cfg)
		done := start(context.Background(), w)

		Eventually(entered).Should(BeClosed())
		w.Stop()

		Expect(<-done).To(Succeed())
		w.Stop()
	})

	It("should return the context error when the parent is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		w := worker.New(ingester, cfg)
		done := start(ctx, w)

		Eventually(ingester.calls.Load).Should(BeNumerically(">=", 1))
		cancel()

		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})
})
