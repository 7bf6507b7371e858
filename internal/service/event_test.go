package service_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/siemd/internal/model"
	"basegraph.app/siemd/internal/service"
	"basegraph.app/siemd/internal/store"
)

var _ = Describe("EventService", func() {
	var (
		ctx       context.Context
		mockStore *mockEventStore
		svc       service.EventService
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockStore = &mockEventStore{}
		svc = service.NewEventService(mockStore)
	})

	Describe("List", func() {
		It("should format time bounds in the canonical timestamp format", func() {
			from := time.Date(2024, 1, 2, 3, 4, 5, 600_000_000, time.FixedZone("CET", 3600))
			var got model.EventFilter
			mockStore.listFn = func(_ context.Context, filter model.EventFilter, _ *model.Cursor, _ int32) ([]model.EventSummary, error) {
				got = filter
				return nil, nil
			}

			_, err := svc.List(ctx, service.ListEventsParams{From: &from})

			Expect(err).NotTo(HaveOccurred())
			Expect(*got.From).To(Equal("2024-01-02T02:04:05.600000Z"))
			Expect(got.To).To(BeNil())
		})

		It("should reject a cursor with only one half set", func() {
			ts := time.Now()
			id := int64(7)

			_, err := svc.List(ctx, service.ListEventsParams{BeforeTS: &ts})
			Expect(err).To(MatchError(service.ErrInvalidCursor))

			_, err = svc.List(ctx, service.ListEventsParams{BeforeID: &id})
			Expect(err).To(MatchError(service.ErrInvalidCursor))
		})

		It("should pass a full cursor through", func() {
			ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
			id := int64(42)
			var got *model.Cursor
			mockStore.listFn = func(_ context.Context, _ model.EventFilter, cursor *model.Cursor, _ int32) ([]model.EventSummary, error) {
				got = cursor
				return nil, nil
			}

			_, err := svc.List(ctx, service.ListEventsParams{BeforeTS: &ts, BeforeID: &id})

			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(&model.Cursor{BeforeTS: "2024-05-01T00:00:00.000000Z", BeforeID: 42}))
		})

		It("should drop a blank search term", func() {
			q := "   "
			var got model.EventFilter
			mockStore.listFn = func(_ context.Context, filter model.EventFilter, _ *model.Cursor, _ int32) ([]model.EventSummary, error) {
				got = filter
				return nil, nil
			}

			_, err := svc.List(ctx, service.ListEventsParams{Query: &q})

			Expect(err).NotTo(HaveOccurred())
			Expect(got.Query).To(BeNil())
		})

		It("should wrap store errors", func() {
			mockStore.listFn = func(context.Context, model.EventFilter, *model.Cursor, int32) ([]model.EventSummary, error) {
				return nil, errors.New("db down")
			}

			_, err := svc.List(ctx, service.ListEventsParams{})

			Expect(err).To(MatchError(ContainSubstring("db down")))
		})

		DescribeTable("limit clamping",
			func(requested int, expected int32) {
				var got int32
				mockStore.listFn = func(_ context.Context, _ model.EventFilter, _ *model.Cursor, limit int32) ([]model.EventSummary, error) {
					got = limit
					return nil, nil
				}

				_, err := svc.List(ctx, service.ListEventsParams{Limit: requested})

				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(expected))
			},
			Entry("unset uses the default", 0, int32(200)),
			Entry("negative becomes one", -5, int32(1)),
			Entry("in range is kept", 50, int32(50)),
			Entry("upper bound is kept", 500, int32(500)),
			Entry("above the bound is capped", 10_000, int32(500)),
		)

		It("should walk every event exactly once with keyset pagination", func() {
			memory := &memoryEventStore{}
			events := make([]model.Event, 0, 550)
			for i := 0; i < 550; i++ {
				// Many events share a timestamp so the id tie-break matters.
				ts := time.Date(2024, 1, 1, 0, 0, i/7, 0, time.UTC).Format("2006-01-02T15:04:05.000000Z")
				events = append(events, model.Event{TS: ts, SourceFile: "/logs/a.jsonl", SourceOffset: int64(i)})
			}
			Expect(memory.InsertBatch(ctx, events)).To(Succeed())
			svc = service.NewEventService(memory)

			seen := make(map[int64]bool)
			params := service.ListEventsParams{Limit: 200}
			pages := 0
			for {
				page, err := svc.List(ctx, params)
				Expect(err).NotTo(HaveOccurred())
				if len(page) == 0 {
					break
				}
				pages++
				if pages == 1 {
					Expect(page).To(HaveLen(200))
				}
				for _, e := range page {
					Expect(seen).NotTo(HaveKey(e.ID), fmt.Sprintf("event %d returned twice", e.ID))
					seen[e.ID] = true
				}
				last := page[len(page)-1]
				ts, err := time.Parse("2006-01-02T15:04:05.000000Z", last.TS)
				Expect(err).NotTo(HaveOccurred())
				id := last.ID
				params.BeforeTS = &ts
				params.BeforeID = &id
			}

			Expect(seen).To(HaveLen(550))
			Expect(pages).To(Equal(3))
		})
	})

	Describe("Get", func() {
		It("should return the event", func() {
			mockStore.getByIDFn = func(_ context.Context, id int64) (*model.Event, error) {
				return &model.Event{ID: id}, nil
			}

			event, err := svc.Get(ctx, 9)

			Expect(err).NotTo(HaveOccurred())
			Expect(event.ID).To(Equal(int64(9)))
		})

		It("should map a missing row to ErrEventNotFound", func() {
			mockStore.getByIDFn = func(context.Context, int64) (*model.Event, error) {
				return nil, store.ErrNotFound
			}

			_, err := svc.Get(ctx, 9)

			Expect(err).To(MatchError(service.ErrEventNotFound))
		})

		It("should wrap other errors", func() {
			mockStore.getByIDFn = func(context.Context, int64) (*model.Event, error) {
				return nil, errors.New("timeout")
			}

			_, err := svc.Get(ctx, 9)

			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, service.ErrEventNotFound)).To(BeFalse())
		})
	})
})
