package events

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	events      map[uuid.UUID]*Event
	subEvents   map[uuid.UUID]*SubEvent
	ticketTypes map[uuid.UUID]*TicketType
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:      make(map[uuid.UUID]*Event),
		subEvents:   make(map[uuid.UUID]*SubEvent),
		ticketTypes: make(map[uuid.UUID]*TicketType),
	}
}

func (r *fakeRepo) CreateEvent(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *fakeRepo) GetEventBySlug(ctx context.Context, slug string) (*Event, error) {
	for _, event := range r.events {
		if event.Slug == slug {
			clone := *event
			return &clone, nil
		}
	}
	return nil, ErrEventNotFound
}

func (r *fakeRepo) UpdateEvent(ctx context.Context, event *Event) error {
	if _, ok := r.events[event.ID]; !ok {
		return ErrEventNotFound
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeRepo) ListEvents(ctx context.Context, query EventListQuery, publishedOnly bool) ([]Event, int64, error) {
	var out []Event
	for _, event := range r.events {
		if publishedOnly && !event.Published {
			continue
		}
		out = append(out, *event)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, event := range r.events {
		if event.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CreateSubEvent(ctx context.Context, subEvent *SubEvent) error {
	if subEvent.ID == uuid.Nil {
		subEvent.ID = uuid.New()
	}
	clone := *subEvent
	r.subEvents[subEvent.ID] = &clone
	return nil
}

func (r *fakeRepo) DeleteSubEvent(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.subEvents[id]; !ok {
		return ErrSubEventNotFound
	}
	delete(r.subEvents, id)
	return nil
}

func (r *fakeRepo) CreateTicketType(ctx context.Context, tt *TicketType) error {
	if tt.ID == uuid.Nil {
		tt.ID = uuid.New()
	}
	clone := *tt
	r.ticketTypes[tt.ID] = &clone
	return nil
}

func (r *fakeRepo) GetTicketTypeByID(ctx context.Context, id uuid.UUID) (*TicketType, error) {
	tt, ok := r.ticketTypes[id]
	if !ok {
		return nil, ErrTicketTypeNotFound
	}
	clone := *tt
	return &clone, nil
}

func (r *fakeRepo) UpdateTicketType(ctx context.Context, tt *TicketType) error {
	if _, ok := r.ticketTypes[tt.ID]; !ok {
		return ErrTicketTypeNotFound
	}
	clone := *tt
	r.ticketTypes[tt.ID] = &clone
	return nil
}

func (r *fakeRepo) DeleteTicketType(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.ticketTypes[id]; !ok {
		return ErrTicketTypeNotFound
	}
	delete(r.ticketTypes, id)
	return nil
}

func (r *fakeRepo) ListTicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]TicketType, error) {
	var out []TicketType
	for _, tt := range r.ticketTypes {
		if tt.EventID == eventID {
			out = append(out, *tt)
		}
	}
	return out, nil
}

func mustID(t *testing.T, id string) uuid.UUID {
	t.Helper()
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("uuid.Parse(%q): %v", id, err)
	}
	return parsed
}

func validEventRequest() CreateEventRequest {
	starts := time.Date(2026, 10, 3, 17, 0, 0, 0, time.UTC)
	return CreateEventRequest{
		Title:     "Spring Tasting Dinner",
		Location:  "The Atrium, Cape Town",
		Capacity:  80,
		StartsAt:  starts,
		EndsAt:    starts.Add(4 * time.Hour),
		Published: true,
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"Spring Tasting Dinner", "spring-tasting-dinner"},
		{"  Chef's Table — Winter  ", "chef-s-table-winter"},
		{"2026 NYE Gala!!!", "2026-nye-gala"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	staffID := uuid.New()

	t.Run("slug derived from title", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeRepo())
		event, err := svc.CreateEvent(ctx, staffID, validEventRequest())
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		if event.Slug != "spring-tasting-dinner" {
			t.Fatalf("slug = %q, want spring-tasting-dinner", event.Slug)
		}
		if event.Currency != "ZAR" {
			t.Fatalf("currency = %q, want ZAR default", event.Currency)
		}
	})

	t.Run("duplicate title gets a suffixed slug", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeRepo())
		first, err := svc.CreateEvent(ctx, staffID, validEventRequest())
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		second, err := svc.CreateEvent(ctx, staffID, validEventRequest())
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		if second.Slug == first.Slug {
			t.Fatalf("second event reused slug %q", second.Slug)
		}
		if !strings.HasPrefix(second.Slug, "spring-tasting-dinner-") {
			t.Fatalf("suffixed slug = %q, want spring-tasting-dinner-* prefix", second.Slug)
		}
	})

	t.Run("schedule must end after it starts", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeRepo())
		req := validEventRequest()
		req.EndsAt = req.StartsAt
		if _, err := svc.CreateEvent(ctx, staffID, req); !errors.Is(err, ErrInvalidSchedule) {
			t.Fatalf("err = %v, want ErrInvalidSchedule", err)
		}
	})
}

func TestUpdateEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	created, err := svc.CreateEvent(ctx, uuid.New(), validEventRequest())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	title := "Autumn Tasting Dinner"
	capacity := 100
	updated, err := svc.UpdateEvent(ctx, mustID(t, created.ID), UpdateEventRequest{
		Title:    &title,
		Capacity: &capacity,
	})
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if updated.Title != title || updated.Capacity != capacity {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Location != created.Location {
		t.Fatalf("untouched field changed: %q -> %q", created.Location, updated.Location)
	}
	// Renaming never rewrites the slug; reservation links keep working.
	if updated.Slug != created.Slug {
		t.Fatalf("slug changed on update: %q -> %q", created.Slug, updated.Slug)
	}

	badEnd := created.StartsAt.Add(-time.Hour)
	if _, err := svc.UpdateEvent(ctx, mustID(t, created.ID), UpdateEventRequest{EndsAt: &badEnd}); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("err = %v, want ErrInvalidSchedule", err)
	}
}

func TestGetEventBySlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	req := validEventRequest()
	req.Published = false
	created, err := svc.CreateEvent(ctx, uuid.New(), req)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if _, err := svc.GetEventBySlug(ctx, created.Slug, false); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("unpublished event visible to the public: %v", err)
	}
	event, err := svc.GetEventBySlug(ctx, created.Slug, true)
	if err != nil {
		t.Fatalf("staff read: %v", err)
	}
	if event.ID != created.ID {
		t.Fatalf("wrong event returned")
	}
}

func TestListEventsVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	staffID := uuid.New()

	published := validEventRequest()
	if _, err := svc.CreateEvent(ctx, staffID, published); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	draft := validEventRequest()
	draft.Title = "Winter Supper Club"
	draft.Published = false
	if _, err := svc.CreateEvent(ctx, staffID, draft); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	public, err := svc.ListEvents(ctx, EventListQuery{}, false)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if public.TotalCount != 1 {
		t.Fatalf("public list count = %d, want 1", public.TotalCount)
	}
	staff, err := svc.ListEvents(ctx, EventListQuery{}, true)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if staff.TotalCount != 2 {
		t.Fatalf("staff list count = %d, want 2", staff.TotalCount)
	}
	if staff.Page != 1 || staff.Limit != 10 {
		t.Fatalf("pagination defaults = %d/%d, want 1/10", staff.Page, staff.Limit)
	}
}

func TestTicketTypes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	created, err := svc.CreateEvent(ctx, uuid.New(), validEventRequest())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	tt, err := svc.CreateTicketType(ctx, mustID(t, created.ID), CreateTicketTypeRequest{
		Name:              "Standard",
		Price:             850,
		ReservationFee:    250,
		QuantityAvailable: 60,
	})
	if err != nil {
		t.Fatalf("CreateTicketType: %v", err)
	}

	if _, err := svc.CreateTicketType(ctx, uuid.New(), CreateTicketTypeRequest{
		Name:              "Orphan",
		QuantityAvailable: 10,
	}); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("ticket type created against a missing event: %v", err)
	}

	price := 950.0
	updated, err := svc.UpdateTicketType(ctx, mustID(t, tt.ID), UpdateTicketTypeRequest{Price: &price})
	if err != nil {
		t.Fatalf("UpdateTicketType: %v", err)
	}
	if updated.Price != 950 || updated.ReservationFee != 250 {
		t.Fatalf("patch not applied: %+v", updated)
	}

	listed, err := svc.ListTicketTypes(ctx, mustID(t, created.ID))
	if err != nil {
		t.Fatalf("ListTicketTypes: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("ticket types = %d, want 1", len(listed))
	}

	if err := svc.DeleteTicketType(ctx, mustID(t, tt.ID)); err != nil {
		t.Fatalf("DeleteTicketType: %v", err)
	}
	if err := svc.DeleteTicketType(ctx, mustID(t, tt.ID)); !errors.Is(err, ErrTicketTypeNotFound) {
		t.Fatalf("double delete: err = %v, want ErrTicketTypeNotFound", err)
	}
}

func TestSubEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	created, err := svc.CreateEvent(ctx, uuid.New(), validEventRequest())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	starts := created.StartsAt
	sub, err := svc.CreateSubEvent(ctx, mustID(t, created.ID), CreateSubEventRequest{
		Title:    "Early Sitting",
		StartsAt: starts,
		EndsAt:   starts.Add(2 * time.Hour),
		Capacity: 30,
	})
	if err != nil {
		t.Fatalf("CreateSubEvent: %v", err)
	}
	if sub.EventID.String() != created.ID {
		t.Fatalf("sub event not attached to its parent")
	}

	if _, err := svc.CreateSubEvent(ctx, mustID(t, created.ID), CreateSubEventRequest{
		Title:    "Backwards Sitting",
		StartsAt: starts,
		EndsAt:   starts,
	}); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("err = %v, want ErrInvalidSchedule", err)
	}
}
