package reservations

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const icsTimeLayout = "20060102T150405Z"

// CalendarLinks builds add-to-calendar links for a reservation's event.
func (s *service) CalendarLinks(ctx context.Context, referenceCode string) (*CalendarLinksResponse, error) {
	reservation, err := s.repo.GetByReferenceCode(ctx, normalizeReference(referenceCode))
	if err != nil {
		return nil, err
	}
	if reservation.Event == nil {
		return nil, ErrReservationNotFound
	}

	event := reservation.Event
	description := fmt.Sprintf("Reservation %s - %d ticket(s)", reservation.ReferenceCode, reservation.Quantity)
	location := event.Location
	if event.Address != "" {
		location = event.Location + ", " + event.Address
	}

	return &CalendarLinksResponse{
		Google:  googleCalendarLink(event.Title, description, location, event.StartsAt, event.EndsAt),
		Outlook: outlookCalendarLink(event.Title, description, location, event.StartsAt, event.EndsAt),
		ICS:     fmt.Sprintf("/api/v1/reservations/%s/calendar.ics", reservation.ReferenceCode),
	}, nil
}

// CalendarICS renders an iCalendar file for the reservation's event. Returns
// the file content and a suggested filename.
func (s *service) CalendarICS(ctx context.Context, referenceCode string) ([]byte, string, error) {
	reservation, err := s.repo.GetByReferenceCode(ctx, normalizeReference(referenceCode))
	if err != nil {
		return nil, "", err
	}
	if reservation.Event == nil {
		return nil, "", ErrReservationNotFound
	}

	event := reservation.Event
	location := event.Location
	if event.Address != "" {
		location = event.Location + ", " + event.Address
	}
	description := fmt.Sprintf("Reservation %s - %d ticket(s)", reservation.ReferenceCode, reservation.Quantity)

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//PPPA//Reservations//EN\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")
	b.WriteString("BEGIN:VEVENT\r\n")
	b.WriteString("UID:" + reservation.ReferenceCode + "@parliamentplating.com\r\n")
	b.WriteString("DTSTAMP:" + time.Now().UTC().Format(icsTimeLayout) + "\r\n")
	b.WriteString("DTSTART:" + event.StartsAt.UTC().Format(icsTimeLayout) + "\r\n")
	b.WriteString("DTEND:" + event.EndsAt.UTC().Format(icsTimeLayout) + "\r\n")
	b.WriteString("SUMMARY:" + escapeICS(event.Title) + "\r\n")
	b.WriteString("DESCRIPTION:" + escapeICS(description) + "\r\n")
	b.WriteString("LOCATION:" + escapeICS(location) + "\r\n")
	b.WriteString("END:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")

	filename := fmt.Sprintf("reservation-%s.ics", strings.ToLower(reservation.ReferenceCode))
	return []byte(b.String()), filename, nil
}

func googleCalendarLink(title, details, location string, start, end time.Time) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", start.UTC().Format(icsTimeLayout)+"/"+end.UTC().Format(icsTimeLayout))
	q.Set("details", details)
	q.Set("location", location)
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}

func outlookCalendarLink(title, details, location string, start, end time.Time) string {
	q := url.Values{}
	q.Set("path", "/calendar/action/compose")
	q.Set("rru", "addevent")
	q.Set("subject", title)
	q.Set("startdt", start.UTC().Format(time.RFC3339))
	q.Set("enddt", end.UTC().Format(time.RFC3339))
	q.Set("body", details)
	q.Set("location", location)
	return "https://outlook.live.com/calendar/0/deeplink/compose?" + q.Encode()
}

// escapeICS escapes text per RFC 5545
func escapeICS(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}
