package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/sessionstore"
)

// fakeQuerier scripts warehouse replies per statement prefix and records
// every statement issued through the gateway.
type fakeQuerier struct {
	replies    map[string][]map[string]any
	statements []string
}

func (f *fakeQuerier) Query(ctx context.Context, stmt string) ([]map[string]any, error) {
	f.statements = append(f.statements, stmt)
	for prefix, rows := range f.replies {
		if strings.HasPrefix(stmt, prefix) {
			return rows, nil
		}
	}
	return nil, nil
}

func (f *fakeQuerier) sawStatement(prefix string) bool {
	for _, stmt := range f.statements {
		if strings.HasPrefix(stmt, prefix) {
			return true
		}
	}
	return false
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGateway(q *fakeQuerier) *gateway.Gateway {
	return gateway.New(q, testLogger())
}

// callReply builds the single-cell procedure reply convention.
func callReply(t *testing.T, procedure string, body map[string]any) []map[string]any {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("unable to marshal reply: %v", err)
	}
	return []map[string]any{{procedure: string(raw)}}
}

func newTestState(t *testing.T) *sessionstore.State {
	t.Helper()
	store := sessionstore.New(time.Hour)
	state, ok := store.Get(store.NewSession())
	if !ok {
		t.Fatal("unable to allocate session state")
	}
	return state
}

// doRequest runs one handler with route variables and session state attached
// the way the router middleware would.
func doRequest(t *testing.T, handler http.HandlerFunc, method, target string, body any,
	vars map[string]string, state *sessionstore.State) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("unable to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, target, reader)
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	r = r.WithContext(context.WithValue(r.Context(), sessionStateKey, state))

	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return out
}
