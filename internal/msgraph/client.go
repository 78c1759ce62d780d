package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/track/internal/trackerr"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0"
	pageSize     = 100
	// maxPages bounds the nextLink chain of one calendar view.
	maxPages = 50
	// maxErrorBody is how much of a failed response ends up in the error.
	maxErrorBody = 512
)

// eventFields is the $select list; it names exactly what Event decodes.
var eventFields = []string{
	"id", "subject", "bodyPreview", "isAllDay", "isCancelled",
	"sensitivity", "showAs", "start", "end", "location",
}

// Client reads calendar events from Microsoft Graph.
type Client struct {
	hc   *http.Client
	base string
}

// NewClient returns a Client whose requests carry tokens from ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource) *Client {
	return NewClientWithHTTP(oauth2.NewClient(ctx, ts), graphBaseURL)
}

// NewClientWithHTTP returns a Client sending requests through hc to base.
func NewClientWithHTTP(hc *http.Client, base string) *Client {
	return &Client{hc: hc, base: strings.TrimSuffix(base, "/")}
}

// GraphTime is a Graph dateTimeTimeZone value.
type GraphTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Event is the subset of a Graph calendar event that becomes a closed log.
type Event struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	BodyPreview string    `json:"bodyPreview"`
	IsAllDay    bool      `json:"isAllDay"`
	IsCancelled bool      `json:"isCancelled"`
	Sensitivity string    `json:"sensitivity"`
	ShowAs      string    `json:"showAs"`
	Start       GraphTime `json:"start"`
	End         GraphTime `json:"end"`
	Location    struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
}

type eventPage struct {
	Value    []Event `json:"value"`
	NextLink string  `json:"@odata.nextLink"`
}

// viewURL is the first calendarView page covering [from, to).
func (c *Client) viewURL(from, to time.Time) string {
	q := url.Values{}
	q.Set("startDateTime", from.UTC().Format(time.RFC3339))
	q.Set("endDateTime", to.UTC().Format(time.RFC3339))
	q.Set("$top", fmt.Sprint(pageSize))
	q.Set("$select", strings.Join(eventFields, ","))
	return c.base + "/me/calendarView?" + q.Encode()
}

// CalendarView returns the events in [from, to), following nextLink pages.
// timezone is an IANA name the event times are reported in; "" means UTC.
// Transport failures and non-200 answers are E_IO, undecodable pages E_FORMAT.
func (c *Client) CalendarView(ctx context.Context, from, to time.Time, timezone string) ([]Event, error) {
	var events []Event
	link := c.viewURL(from, to)
	for n := 0; link != ""; n++ {
		if n == maxPages {
			return nil, trackerr.ErrIOFailure.WithMessagef("calendar view exceeds %d pages", maxPages)
		}
		page, err := c.fetchPage(ctx, link, timezone)
		if err != nil {
			return nil, err
		}
		events = append(events, page.Value...)
		link = page.NextLink
	}
	return events, nil
}

func (c *Client) fetchPage(ctx context.Context, link, timezone string) (*eventPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, trackerr.ErrIOFailure.Wrap(err, "build graph request")
	}
	req.Header.Set("Accept", "application/json")
	if timezone != "" {
		req.Header.Set("Prefer", `outlook.timezone="`+timezone+`"`)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, trackerr.ErrIOFailure.Wrap(err, "graph request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, trackerr.ErrIOFailure.WithMessagef("graph returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page eventPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, trackerr.ErrFormat.Wrap(err, "decode graph page")
	}
	return &page, nil
}
