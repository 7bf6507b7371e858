package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/siemd/common/id"
	"basegraph.app/siemd/core/config"
	"basegraph.app/siemd/internal/ingest"
	"basegraph.app/siemd/internal/lock"
	"basegraph.app/siemd/internal/model"
	"basegraph.app/siemd/internal/service"
)

func jsonLines(prefix string, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, `{"msg":"%s-%d","level":"info"}`+"\n", prefix, i)
	}
	return sb.String()
}

func writeLog(path, content string) {
	ExpectWithOffset(1, os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
	ExpectWithOffset(1, os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
}

func appendLog(path, content string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	_, err = f.WriteString(content)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	ExpectWithOffset(1, f.Close()).To(Succeed())
}

var _ = Describe("IngestService", func() {
	var (
		ctx      context.Context
		root     string
		events   *memoryEventStore
		offsets  *memoryFileOffsetStore
		txRunner *mockTxRunner
		observer *recordingObserver
		locker   lock.Locker
		svc      service.IngestService
	)

	build := func() {
		n, err := ingest.NewNormalizer(root, config.LimitsConfig{})
		Expect(err).NotTo(HaveOccurred())
		svc = service.NewIngestService(txRunner, n, locker, observer, service.IngestServiceConfig{Extension: ".jsonl"})
	}

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		var err error
		root, err = ingest.CanonicalRoot(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		events = &memoryEventStore{}
		offsets = newMemoryFileOffsetStore()
		txRunner = &mockTxRunner{stores: &mockStoreProvider{events: events, offsets: offsets}}
		observer = &recordingObserver{}
		locker = lock.NewLocal()
		build()
	})

	Describe("IngestOnce", func() {
		It("should ingest every discovered file and checkpoint each", func() {
			web := filepath.Join(root, "web", "access.jsonl")
			auth := filepath.Join(root, "auth", "auth.jsonl")
			writeLog(web, jsonLines("web", 3))
			writeLog(auth, jsonLines("auth", 2)+"\n[1,2,3]\n")

			result, err := svc.IngestOnce(ctx, root, 100, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.RunID).NotTo(BeZero())
			Expect(result.FilesScanned).To(Equal(2))
			Expect(result.FilesFailed).To(BeZero())
			Expect(result.TotalInserted).To(Equal(5))
			Expect(result.Stats.EmptyLines).To(Equal(1))
			Expect(result.Stats.NonObject).To(Equal(1))
			Expect(result.PerFile).To(HaveKey(web))
			Expect(result.PerFile[auth].InsertedCount).To(Equal(2))
			Expect(events.count()).To(Equal(5))

			cp, err := offsets.Get(ctx, web)
			Expect(err).NotTo(HaveOccurred())
			Expect(cp.Offset).To(Equal(int64(len(jsonLines("web", 3)))))
			Expect(cp.Inode).NotTo(BeNil())
			Expect(observer.scans).To(Equal(1))
		})

		It("should be idempotent across passes", func() {
			path := filepath.Join(root, "web", "access.jsonl")
			writeLog(path, jsonLines("a", 4))

			_, err := svc.IngestOnce(ctx, root, 100, 10)
			Expect(err).NotTo(HaveOccurred())
			upserts := offsets.upserts

			result, err := svc.IngestOnce(ctx, root, 100, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.TotalInserted).To(BeZero())
			Expect(events.count()).To(Equal(4))
			Expect(offsets.upserts).To(Equal(upserts))
		})

		It("should pick up only appended lines, and partial lines once complete", func() {
			path := filepath.Join(root, "web", "access.jsonl")
			writeLog(path, jsonLines("a", 2)+`{"msg":"par`)

			first, err := svc.IngestOnce(ctx, root, 100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.TotalInserted).To(Equal(2))
			Expect(first.Stats.IncompleteLines).To(Equal(1))

			appendLog(path, `tial"}`+"\n"+jsonLines("b", 1))
			second, err := svc.IngestOnce(ctx, root, 100, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(second.TotalInserted).To(Equal(2))
			e, err := events.GetByID(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(*e.Message).To(Equal("partial"))
		})

		It("should count a locked file as failed and keep scanning", func() {
			locked := filepath.Join(root, "a", "locked.jsonl")
			free := filepath.Join(root, "b", "free.jsonl")
			writeLog(locked, jsonLines("l", 1))
			writeLog(free, jsonLines("f", 1))
			locker = &mockLocker{tryLockFn: func(_ context.Context, key string) (func(), error) {
				if key == locked {
					return nil, lock.ErrLocked
				}
				return func() {}, nil
			}}
			build()

			result, err := svc.IngestOnce(ctx, root, 100, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.FilesFailed).To(Equal(1))
			Expect(result.FilesScanned).To(Equal(1))
			Expect(result.PerFile).NotTo(HaveKey(locked))
			Expect(observer.filesFailed).To(Equal(1))
		})

		It("should recover from a panic in one file", func() {
			boom := filepath.Join(root, "a", "boom.jsonl")
			fine := filepath.Join(root, "b", "fine.jsonl")
			writeLog(boom, jsonLines("x", 1))
			writeLog(fine, jsonLines("y", 1))
			txRunner.stores.offsets = &mockFileOffsetStore{
				getFn: func(ctx context.Context, path string) (*model.FileOffset, error) {
					if path == boom {
						panic("corrupt checkpoint")
					}
					return offsets.Get(ctx, path)
				},
				upsertFn: offsets.Upsert,
			}

			result, err := svc.IngestOnce(ctx, root, 100, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.FilesFailed).To(Equal(1))
			Expect(result.PerFile).To(HaveKey(fine))
			Expect(events.count()).To(Equal(1))
		})

		It("should return an empty result for a missing root", func() {
			result, err := svc.IngestOnce(ctx, filepath.Join(root, "missing"), 100, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.FilesScanned).To(BeZero())
			Expect(result.PerFile).To(BeEmpty())
		})

		It("should stop before the next file once the context is cancelled", func() {
			writeLog(filepath.Join(root, "a", "x.jsonl"), jsonLines("x", 1))
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			result, err := svc.IngestOnce(cancelled, root, 100, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.FilesScanned).To(BeZero())
			Expect(events.count()).To(BeZero())
		})
	})

	Describe("IngestBatch", func() {
		It("should keep the prior checkpoint when the insert fails", func() {
			path := filepath.Join(root, "web", "access.jsonl")
			writeLog(path, jsonLines("a", 2))
			events.failOn = func([]model.Event) error { return errors.New("connection reset") }

			result := svc.IngestBatch(ctx, path, 100)

			Expect(result.Progressed).To(BeFalse())
			Expect(result.InsertedCount).To(BeZero())
			Expect(result.NewOffset).To(BeZero())
			_, err := offsets.Get(ctx, path)
			Expect(err).To(HaveOccurred())
			Expect(observer.batchFailures).To(Equal(1))

			events.failOn = nil
			retry := svc.IngestBatch(ctx, path, 100)

			Expect(retry.Progressed).To(BeTrue())
			Expect(retry.InsertedCount).To(Equal(2))
		})

		It("should not duplicate events when the checkpoint write failed after insert", func() {
			path := filepath.Join(root, "web", "access.jsonl")
			writeLog(path, jsonLines("a", 3))
			failing := &mockFileOffsetStore{
				getFn:    offsets.Get,
				upsertFn: func(context.Context, model.FileOffset) error { return errors.New("disk full") },
			}
			txRunner.stores.offsets = failing

			Expect(svc.IngestBatch(ctx, path, 100).Progressed).To(BeFalse())

			txRunner.stores.offsets = offsets
			result := svc.IngestBatch(ctx, path, 100)

			Expect(result.Progressed).To(BeTrue())
			Expect(events.count()).To(Equal(3))
		})

		It("should report no progress for a vanished file", func() {
			result := svc.IngestBatch(ctx, filepath.Join(root, "gone.jsonl"), 100)

			Expect(result.Progressed).To(BeFalse())
			Expect(result.Inode).To(BeNil())
			Expect(offsets.upserts).To(BeZero())
		})

		It("should checkpoint a file of only invalid lines", func() {
			path := filepath.Join(root, "web", "junk.jsonl")
			writeLog(path, "nope\n\n")

			result := svc.IngestBatch(ctx, path, 100)

			Expect(result.Progressed).To(BeTrue())
			Expect(result.InsertedCount).To(BeZero())
			Expect(result.Stats.JSONErrors).To(Equal(1))
			Expect(result.Stats.EmptyLines).To(Equal(1))

			again := svc.IngestBatch(ctx, path, 100)
			Expect(again.Progressed).To(BeFalse())
		})
	})

	Describe("DrainFile", func() {
		It("should stop at the per-file batch cap and resume on the next drain", func() {
			path := filepath.Join(root, "web", "big.jsonl")
			writeLog(path, jsonLines("a", 10))

			first := svc.DrainFile(ctx, path, 3, 2)

			Expect(first.BatchCount).To(Equal(2))
			Expect(first.InsertedCount).To(Equal(6))

			second := svc.DrainFile(ctx, path, 3, 10)

			Expect(second.InsertedCount).To(Equal(4))
			Expect(second.BatchCount).To(Equal(2))
			Expect(events.count()).To(Equal(10))
		})

		It("should stop once a batch inserts fewer events than requested", func() {
			path := filepath.Join(root, "web", "small.jsonl")
			writeLog(path, jsonLines("a", 5))

			result := svc.DrainFile(ctx, path, 3, 10)

			Expect(result.BatchCount).To(Equal(2))
			Expect(result.InsertedCount).To(Equal(5))
		})

		It("should stop after one batch when nothing changed", func() {
			path := filepath.Join(root, "web", "small.jsonl")
			writeLog(path, jsonLines("a", 3))
			svc.DrainFile(ctx, path, 3, 10)

			result := svc.DrainFile(ctx, path, 3, 10)

			Expect(result.BatchCount).To(Equal(1))
			Expect(result.InsertedCount).To(BeZero())
		})
	})
})
