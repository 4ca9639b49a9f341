// Package testutil provides testing utilities for the PubChem client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode  int
	Body        string
	ContentType string
	Delay       time.Duration
}

// MockPubChem is a configurable mock PUG-REST server for testing.
type MockPubChem struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	counts   map[string]int

	// RequestCount is the total number of requests received.
	RequestCount int
}

// NewMockPubChem creates a new mock server. Paths without a registered
// handler answer 404, mirroring PubChem's behavior for unknown identifiers.
func NewMockPubChem() *MockPubChem {
	mock := &MockPubChem{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		counts:   make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.counts[r.URL.Path]++
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"Fault":{"Code":"PUGREST.NotFound"}}`)
	}))

	return mock
}

// BaseURL returns the mock's PUG-REST base URL.
func (m *MockPubChem) BaseURL() string {
	return m.server.URL + "/rest/pug"
}

// ViewBaseURL returns the mock's PUG-View base URL.
func (m *MockPubChem) ViewBaseURL() string {
	return m.server.URL + "/rest/pug_view/data"
}

// Handle registers a custom handler for a path (relative to the server root).
func (m *MockPubChem) Handle(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// Respond registers a canned response for a path.
func (m *MockPubChem) Respond(path string, resp MockResponse) {
	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	if resp.ContentType == "" {
		resp.ContentType = "application/json"
	}

	m.Handle(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		w.Header().Set("Content-Type", resp.ContentType)
		w.WriteHeader(resp.StatusCode)
		fmt.Fprint(w, resp.Body)
	})
}

// RespondJSON registers a 200 JSON response for a path.
func (m *MockPubChem) RespondJSON(path, body string) {
	m.Respond(path, MockResponse{Body: body})
}

// RequestsFor returns how many requests a path has received.
func (m *MockPubChem) RequestsFor(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[path]
}

// Close shuts down the mock server.
func (m *MockPubChem) Close() {
	m.server.Close()
}

// CIDListBody builds an IdentifierList lookup response.
func CIDListBody(cids ...int64) string {
	parts := make([]string, len(cids))
	for i, cid := range cids {
		parts[i] = fmt.Sprintf("%d", cid)
	}
	return fmt.Sprintf(`{"IdentifierList":{"CID":[%s]}}`, strings.Join(parts, ","))
}

// PropertyTableBody builds a batch property response. A non-empty listKey
// adds a continuation token. Each record is rendered as given, so values must
// already be valid JSON fragments.
func PropertyTableBody(listKey string, records ...string) string {
	body := fmt.Sprintf(`{"PropertyTable":{"Properties":[%s]}`, strings.Join(records, ","))
	if listKey != "" {
		body += fmt.Sprintf(`,"ListKey":"%s"`, listKey)
	}
	return body + "}"
}

// SynonymsBody builds a synonym list response.
func SynonymsBody(cid int64, synonyms ...string) string {
	quoted := make([]string, len(synonyms))
	for i, s := range synonyms {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf(`{"InformationList":{"Information":[{"CID":%d,"Synonym":[%s]}]}}`,
		cid, strings.Join(quoted, ","))
}

// CASRecordBody builds a PUG-View record carrying a CAS number in the nested
// section layout the live service uses.
func CASRecordBody(cas string) string {
	return fmt.Sprintf(`{"Record":{"Section":[{"TOCHeading":"Names and Identifiers","Section":[`+
		`{"TOCHeading":"Other Identifiers","Section":[`+
		`{"TOCHeading":"CAS","Information":[{"Value":{"StringWithMarkup":[{"String":%q}]}}]}]}]}]}}`, cas)
}
