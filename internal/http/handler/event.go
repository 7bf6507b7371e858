package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/siemd/common/logger"
	"basegraph.app/siemd/internal/http/dto"
	"basegraph.app/siemd/internal/ingest"
	"basegraph.app/siemd/internal/service"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		slog.WarnContext(ctx, "invalid event list query", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params, err := toListEventsParams(query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.eventService.List(ctx, params)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCursor) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to list events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}

	c.JSON(http.StatusOK, dto.ToEventListItems(events))
}

func (h *EventHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{EventID: &id})

	event, err := h.eventService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to get event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get event"})
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDetail(event))
}

func toListEventsParams(q dto.ListEventsQuery) (service.ListEventsParams, error) {
	from, err := parseTimeParam("from", q.From)
	if err != nil {
		return service.ListEventsParams{}, err
	}
	to, err := parseTimeParam("to", q.To)
	if err != nil {
		return service.ListEventsParams{}, err
	}
	beforeTS, err := parseTimeParam("before_ts", q.BeforeTS)
	if err != nil {
		return service.ListEventsParams{}, err
	}

	params := service.ListEventsParams{
		From:       from,
		To:         to,
		Apps:       q.Apps,
		EventTypes: q.EventTypes,
		Levels:     q.Levels,
		UserID:     q.UserID,
		SrcIP:      q.SrcIP,
		RequestID:  q.RequestID,
		HTTPStatus: q.HTTPStatus,
		Query:      q.Q,
		BeforeTS:   beforeTS,
		BeforeID:   q.BeforeID,
	}
	if q.Limit != nil {
		params.Limit = *q.Limit
	}
	return params, nil
}

func parseTimeParam(name string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, ok := ingest.ParseTime(*value)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q", name, *value)
	}
	return &t, nil
}
