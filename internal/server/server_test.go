package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobeval/jobeval/internal/db"
	"github.com/jobeval/jobeval/internal/feedback"
	"github.com/jobeval/jobeval/internal/occupation"
	"github.com/jobeval/jobeval/internal/server/ratelimit"
)

// ---------------------------------------------------------------------
// Test Fixtures
// ---------------------------------------------------------------------

func testWages() occupation.WagePercentiles {
	return occupation.WagePercentiles{P10: 40000, P25: 50000, Median: 65000, P75: 80000, P90: 100000}
}

func testDataset() *occupation.Dataset {
	return &occupation.Dataset{
		Version:     "2023.1",
		GeneratedAt: "2024-05-01T00:00:00Z",
		Occupations: map[string]occupation.Occupation{
			"15-1252": {Code: "15-1252", Title: "Software Developers", Group: "Computer and Mathematical", Wages: testWages()},
			"29-1141": {Code: "29-1141", Title: "Registered Nurses", Group: "Healthcare Practitioners", Wages: testWages()},
		},
		Index: map[string][]occupation.Candidate{
			"software developers": {{Code: "15-1252", Title: "Software Developers", MatchType: occupation.MatchPrimary}},
			"software engineer":   {{Code: "15-1252", Title: "Software Engineer", MatchType: occupation.MatchAlternate}},
			"registered nurses":   {{Code: "29-1141", Title: "Registered Nurses", MatchType: occupation.MatchPrimary}},
		},
	}
}

type stubSessionStore struct {
	sessions map[uuid.UUID]db.EvalSession
	failWith error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[uuid.UUID]db.EvalSession)}
}

func (st *stubSessionStore) CreateSession(_ context.Context, s db.EvalSession) (*db.EvalSession, error) {
	if st.failWith != nil {
		return nil, st.failWith
	}
	s.ID = uuid.New()
	if s.Step == "" {
		s.Step = db.StepCompany
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	st.sessions[s.ID] = s
	return &s, nil
}

func (st *stubSessionStore) GetSession(_ context.Context, id uuid.UUID) (*db.EvalSession, error) {
	if st.failWith != nil {
		return nil, st.failWith
	}
	s, ok := st.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (st *stubSessionStore) UpdateSession(_ context.Context, s db.EvalSession) (*db.EvalSession, error) {
	if st.failWith != nil {
		return nil, st.failWith
	}
	existing, ok := st.sessions[s.ID]
	if !ok {
		return nil, nil
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now()
	st.sessions[s.ID] = s
	return &s, nil
}

func (st *stubSessionStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	if st.failWith != nil {
		return st.failWith
	}
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	delete(st.sessions, id)
	return nil
}

type stubFeedbackStore struct {
	saved     []db.FeedbackRecord
	forwarded map[uuid.UUID]string
	failWith  error
}

func newStubFeedbackStore() *stubFeedbackStore {
	return &stubFeedbackStore{forwarded: make(map[uuid.UUID]string)}
}

func (st *stubFeedbackStore) SaveFeedback(_ context.Context, f db.FeedbackRecord) (uuid.UUID, error) {
	if st.failWith != nil {
		return uuid.Nil, st.failWith
	}
	f.ID = uuid.New()
	st.saved = append(st.saved, f)
	return f.ID, nil
}

func (st *stubFeedbackStore) MarkFeedbackForwarded(_ context.Context, id uuid.UUID, issueURL string) error {
	st.forwarded[id] = issueURL
	return nil
}

type stubForwarder struct {
	issue *feedback.Issue
	err   error
	calls int
}

func (sf *stubForwarder) Forward(_ context.Context, _ feedback.Submission) (*feedback.Issue, error) {
	sf.calls++
	if sf.err != nil {
		return nil, sf.err
	}
	return sf.issue, nil
}

func newTestServer(t *testing.T) (*Server, *stubSessionStore, *stubFeedbackStore) {
	t.Helper()
	ds := testDataset()
	sessions := newStubSessionStore()
	fbStore := newStubFeedbackStore()

	s := &Server{
		sessions: sessions,
		feedback: fbStore,
		matcher:  occupation.NewMatcher(ds.Occupations, ds.Index),
		dataset:  ds,
		metrics:  NewMetrics(),
	}
	s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	t.Cleanup(s.rateLimiter.Stop)

	return s, sessions, fbStore
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ---------------------------------------------------------------------
// Match and Evaluate
// ---------------------------------------------------------------------

func TestHandleMatch_ReturnsRankedMatches(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/match", map[string]any{"query": "Software Developers"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Software Developers", body["query"])
	assert.Equal(t, float64(1), body["count"])

	matches := body["matches"].([]any)
	top := matches[0].(map[string]any)
	assert.Equal(t, "15-1252", top["code"])
	assert.Equal(t, 1.0, top["confidence"])
}

func TestHandleMatch_MissingQuery(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/match", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "Query is required")
}

func TestHandleMatch_InvalidBody(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/match", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMatch_NoResults(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/match", map[string]any{"query": "zzzzqqqq"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])
}

func TestHandleEvaluate_AtMarket(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/evaluate", map[string]any{
		"code":            "15-1252",
		"proposed_salary": 57500,
		"annual_revenue":  10000000,
		"employees":       20,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	eval := body["evaluation"].(map[string]any)
	assert.Equal(t, 37.5, eval["percentile"])
	assert.Equal(t, "at_market", eval["verdict"])
	assert.Equal(t, "$57,500", body["proposed_formatted"])
}

func TestHandleEvaluate_AboveBudget(t *testing.T) {
	s, _, _ := newTestServer(t)

	// 1M revenue over 10 heads at the default ratio caps the budget at
	// 30000 per head, well under the proposed salary.
	rec := doJSON(t, s.handler(), "POST", "/evaluate", map[string]any{
		"code":            "15-1252",
		"proposed_salary": 60000,
		"annual_revenue":  1000000,
		"employees":       10,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	eval := decodeBody(t, rec)["evaluation"].(map[string]any)
	assert.Equal(t, "above_budget", eval["verdict"])
}

func TestHandleEvaluate_UnknownCode(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/evaluate", map[string]any{
		"code":            "99-9999",
		"proposed_salary": 57500,
		"annual_revenue":  10000000,
		"employees":       20,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleEvaluate_MissingFields(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/evaluate", map[string]any{"code": "15-1252"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---------------------------------------------------------------------
// Occupation Reads
// ---------------------------------------------------------------------

func TestHandleGetOccupation_Found(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "GET", "/occupations/29-1141", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Registered Nurses", body["title"])
}

func TestHandleGetOccupation_NotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "GET", "/occupations/00-0000", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDataset(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "GET", "/dataset", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "2023.1", body["version"])
	assert.Equal(t, float64(2), body["occupations"])
}

func TestHandleHealth(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "GET", "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

// ---------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------

func TestHandleCreateSession(t *testing.T) {
	s, store, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/sessions", map[string]any{
		"company_name":   "Acme Corp",
		"employees":      50,
		"annual_revenue": 5000000,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Acme Corp", body["company_name"])
	assert.Equal(t, "company", body["step"])
	assert.Len(t, store.sessions, 1)
}

func TestHandleCreateSession_Invalid(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/sessions", map[string]any{
		"company_name": "Acme Corp",
		"employees":    0,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetSession_NotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "GET", "/sessions/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetSession_InvalidID(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "GET", "/sessions/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateSession_AdvancesStep(t *testing.T) {
	s, store, _ := newTestServer(t)
	created, err := store.CreateSession(context.Background(), db.EvalSession{
		CompanyName: "Acme Corp", Employees: 50, AnnualRevenue: 5000000,
	})
	require.NoError(t, err)

	code := "15-1252"
	rec := doJSON(t, s.handler(), "PUT", "/sessions/"+created.ID.String(), map[string]any{
		"company_name":    "Acme Corp",
		"employees":       50,
		"annual_revenue":  5000000,
		"position_title":  "Software Engineer",
		"occupation_code": code,
		"step":            "salary",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "salary", body["step"])
	assert.Equal(t, code, body["occupation_code"])
}

func TestHandleUpdateSession_UnknownOccupationCode(t *testing.T) {
	s, store, _ := newTestServer(t)
	created, err := store.CreateSession(context.Background(), db.EvalSession{
		CompanyName: "Acme Corp", Employees: 50, AnnualRevenue: 5000000,
	})
	require.NoError(t, err)

	rec := doJSON(t, s.handler(), "PUT", "/sessions/"+created.ID.String(), map[string]any{
		"company_name":    "Acme Corp",
		"employees":       50,
		"annual_revenue":  5000000,
		"occupation_code": "00-0000",
		"step":            "position",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateSession_InvalidStep(t *testing.T) {
	s, store, _ := newTestServer(t)
	created, err := store.CreateSession(context.Background(), db.EvalSession{
		CompanyName: "Acme Corp", Employees: 50, AnnualRevenue: 5000000,
	})
	require.NoError(t, err)

	rec := doJSON(t, s.handler(), "PUT", "/sessions/"+created.ID.String(), map[string]any{
		"company_name":   "Acme Corp",
		"employees":      50,
		"annual_revenue": 5000000,
		"step":           "bogus",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDeleteSession(t *testing.T) {
	s, store, _ := newTestServer(t)
	created, err := store.CreateSession(context.Background(), db.EvalSession{
		CompanyName: "Acme Corp", Employees: 50, AnnualRevenue: 5000000,
	})
	require.NoError(t, err)

	rec := doJSON(t, s.handler(), "DELETE", "/sessions/"+created.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.sessions)

	rec = doJSON(t, s.handler(), "DELETE", "/sessions/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---------------------------------------------------------------------
// Feedback
// ---------------------------------------------------------------------

func TestHandleFeedback_ForwardsIssue(t *testing.T) {
	s, _, fbStore := newTestServer(t)
	fwd := &stubForwarder{issue: &feedback.Issue{Number: 7, HTMLURL: "https://github.com/jobeval/feedback/issues/7"}}
	s.forwarder = fwd

	rec := doJSON(t, s.handler(), "POST", "/feedback", map[string]any{
		"category": "bug",
		"message":  "Percentile looks off for nurses",
		"page":     "/evaluate",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "accepted", body["status"])
	assert.Equal(t, "https://github.com/jobeval/feedback/issues/7", body["issue_url"])
	assert.Equal(t, 1, fwd.calls)
	require.Len(t, fbStore.saved, 1)
	assert.Len(t, fbStore.forwarded, 1)
}

func TestHandleFeedback_StoredWhenForwardingFails(t *testing.T) {
	s, _, fbStore := newTestServer(t)
	s.forwarder = &stubForwarder{err: fmt.Errorf("tracker unreachable")}

	rec := doJSON(t, s.handler(), "POST", "/feedback", map[string]any{
		"category": "idea",
		"message":  "Add hourly wages",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decodeBody(t, rec)
	assert.NotContains(t, body, "issue_url")
	assert.Len(t, fbStore.saved, 1)
	assert.Empty(t, fbStore.forwarded)
}

func TestHandleFeedback_NoForwarderConfigured(t *testing.T) {
	s, _, fbStore := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/feedback", map[string]any{
		"category": "other",
		"message":  "Just saying hi",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, fbStore.saved, 1)
}

func TestHandleFeedback_InvalidCategory(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/feedback", map[string]any{
		"category": "rant",
		"message":  "this is fine",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFeedback_InvalidEmail(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s.handler(), "POST", "/feedback", map[string]any{
		"category": "bug",
		"message":  "something broke",
		"email":    "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------

func TestWithCORS_Preflight(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/match", nil)
	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithRateLimit_HeadersAndDenial(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.rateLimiter.Stop()
	s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Minute,
	})
	t.Cleanup(s.rateLimiter.Stop)

	handler := s.handler()

	for i := 0; i < 2; i++ {
		rec := doJSON(t, handler, "POST", "/match", map[string]any{"query": "nurse"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := doJSON(t, handler, "POST", "/match", map[string]any{"query": "nurse"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limit_exceeded", decodeBody(t, rec)["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)
	handler := s.handler()

	doJSON(t, handler, "POST", "/match", map[string]any{"query": "Software Developers"})

	rec := doJSON(t, handler, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "title_match_queries_total")
}
