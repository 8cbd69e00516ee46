package dagster

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
)

// runEventsQuery pages through the event log of one run. The cursor is an
// opaque server token; a null cursor in the response ends the stream.
const runEventsQuery = `
query RunEvents($runId: ID!, $cursor: String) {
  logsForRun(runId: $runId, afterCursor: $cursor) {
    ... on EventConnection {
      events {
        ... on MessageEvent {
          level
          timestamp
          message
        }
        ... on ExecutionStepFailureEvent {
          error {
            message
          }
        }
      }
      cursor
    }
  }
}`

// Event is one server-reported log event for a run.
type Event struct {
	Level     string      `json:"level"`
	Timestamp string      `json:"timestamp"`
	Message   string      `json:"message"`
	Error     *EventError `json:"error,omitempty"`
}

// EventError is the nested failure detail attached to some event kinds.
type EventError struct {
	Message string `json:"message"`
}

// EventsPage is one page of a run's event log. An empty Cursor means the
// server reported no further pages.
type EventsPage struct {
	Events []Event `json:"events"`
	Cursor string  `json:"cursor"`
}

// Querier executes one page of the run-events query against a deployment.
type Querier interface {
	RunEventsPage(ctx context.Context, runID, cursor string) (EventsPage, error)
}

type graphqlQuerier struct {
	client *graphql.Client
	token  string
}

func newGraphQLQuerier(ref RunRef, token string) Querier {
	return &graphqlQuerier{
		client: graphql.NewClient(ref.GraphQLURL()),
		token:  token,
	}
}

func (q *graphqlQuerier) RunEventsPage(ctx context.Context, runID, cursor string) (EventsPage, error) {
	req := graphql.NewRequest(runEventsQuery)
	req.Var("runId", runID)
	if cursor == "" {
		req.Var("cursor", nil)
	} else {
		req.Var("cursor", cursor)
	}
	req.Header.Set("Dagster-Cloud-Api-Token", q.token)

	var resp struct {
		LogsForRun EventsPage `json:"logsForRun"`
	}
	if err := q.client.Run(ctx, req, &resp); err != nil {
		return EventsPage{}, fmt.Errorf("run events query: %w", err)
	}
	return resp.LogsForRun, nil
}
