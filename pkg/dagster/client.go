package dagster

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// errorLevel is the severity token Dagster assigns to error events.
const errorLevel = "ERROR"

const noErrorLogsPrefix = "No error logs found for run: "

// QuerierFactory builds a Querier bound to one deployment.
type QuerierFactory func(ref RunRef, token string) Querier

// Client fetches error-level run logs from Dagster Cloud deployments.
// One Querier is constructed per deployment endpoint and reused for the
// Client's lifetime.
type Client struct {
	token      string
	newQuerier QuerierFactory
	logger     *zap.Logger

	mu       sync.Mutex
	queriers map[string]Querier // keyed by RunRef.Endpoint()
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithQuerierFactory replaces the GraphQL transport. Used in tests.
func WithQuerierFactory(f QuerierFactory) Option {
	return func(c *Client) {
		c.newQuerier = f
	}
}

// NewClient creates a client that authenticates with the given Dagster
// Cloud API token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		newQuerier: newGraphQLQuerier,
		logger:     zap.NewNop(),
		queriers:   make(map[string]Querier),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) querierFor(ref RunRef) Querier {
	key := ref.Endpoint()
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.queriers[key]
	if !ok {
		q = c.newQuerier(ref, c.token)
		c.queriers[key] = q
	}
	return q
}

// FetchErrorLogText returns the ERROR-level log lines for the run addressed
// by runURL, newline-joined in server order, or the no-error-logs sentinel
// when the run has none.
func (c *Client) FetchErrorLogText(ctx context.Context, runURL string) (string, error) {
	ref, err := ParseRunURL(runURL)
	if err != nil {
		return "", err
	}
	q := c.querierFor(ref)

	c.logger.Info("Fetching run logs",
		zap.String("run_id", ref.RunID),
		zap.String("endpoint", ref.Endpoint()))

	var events []Event
	cursor := ""
	for {
		page, err := q.RunEventsPage(ctx, ref.RunID, cursor)
		if err != nil {
			return "", fmt.Errorf("fetch events for run %s: %w", ref.RunID, err)
		}
		events = append(events, page.Events...)

		// A missing cursor ends the stream; so does a cursor identical to
		// the one just used, which would otherwise page forever.
		if page.Cursor == "" || page.Cursor == cursor {
			break
		}
		cursor = page.Cursor
	}

	lines := errorLines(events)
	c.logger.Info("Fetched run logs",
		zap.String("run_id", ref.RunID),
		zap.Int("total_events", len(events)),
		zap.Int("error_events", len(lines)))

	if len(lines) == 0 {
		return noErrorLogsPrefix + ref.RunID, nil
	}
	return strings.Join(lines, "\n"), nil
}

// errorLines renders ERROR-level events as "<timestamp> - <message>" lines,
// appending the nested error detail when it adds information. Events with
// missing fields render with blanks rather than failing the fetch.
func errorLines(events []Event) []string {
	var lines []string
	for _, evt := range events {
		if evt.Level != errorLevel {
			continue
		}
		msg := evt.Message
		if evt.Error != nil && evt.Error.Message != "" && !strings.Contains(msg, evt.Error.Message) {
			msg = fmt.Sprintf("%s | %s", msg, evt.Error.Message)
		}
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("%s - %s", evt.Timestamp, msg)))
	}
	return lines
}

// NoErrorLogs reports whether text is the sentinel returned when a run has
// no error-level events.
func NoErrorLogs(text string) bool {
	return strings.HasPrefix(text, noErrorLogsPrefix)
}
