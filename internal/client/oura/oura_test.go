package oura

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stridelog/stridelog/internal/timeline"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New("test-token", WithBaseURL(srv.URL))
}

func TestSessionsWindowExtendedByOneDay(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start_date"); got != "2025-12-01" {
			t.Errorf("start_date = %q, want 2025-12-01", got)
		}
		// nominal end 2025-12-07; the query must reach one day past it
		// to catch overnight sessions attributed to the following day.
		if got := r.URL.Query().Get("end_date"); got != "2025-12-08" {
			t.Errorf("end_date = %q, want 2025-12-08", got)
		}
		_ = go_json.NewEncoder(w).Encode(PaginatedResponse[SleepSessionRecord]{})
	})

	if _, err := client.Sleep.Sessions(t.Context(), "2025-12-01", "2025-12-07"); err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
}

func TestSessionsPagination(t *testing.T) {
	t.Parallel()

	var calls int
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch calls {
		case 1:
			if got := r.URL.Query().Get("next_token"); got != "" {
				t.Errorf("first call sent next_token %q", got)
			}
			next := "token-2"
			_ = go_json.NewEncoder(w).Encode(PaginatedResponse[SleepSessionRecord]{
				Data:      []SleepSessionRecord{{Day: "2025-12-01", TotalSleepSeconds: 25200}},
				NextToken: &next,
			})
		default:
			if got := r.URL.Query().Get("next_token"); got != "token-2" {
				t.Errorf("second call next_token = %q, want token-2", got)
			}
			_ = go_json.NewEncoder(w).Encode(PaginatedResponse[SleepSessionRecord]{
				Data: []SleepSessionRecord{{Day: "2025-12-02", TotalSleepSeconds: 28800}},
			})
		}
	})

	sessions, err := client.Sleep.Sessions(t.Context(), "2025-12-01", "2025-12-07")
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}

	want := []timeline.SleepSession{
		{Date: "2025-12-01", TotalSeconds: 25200},
		{Date: "2025-12-02", TotalSeconds: 28800},
	}
	if diff := cmp.Diff(want, sessions); diff != "" {
		t.Errorf("Sessions() mismatch (-want +got):\n%s", diff)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSessionsPaginationCeiling(t *testing.T) {
	t.Parallel()

	var calls int
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		next := fmt.Sprintf("token-%d", calls)
		_ = go_json.NewEncoder(w).Encode(PaginatedResponse[SleepSessionRecord]{
			Data:      []SleepSessionRecord{{Day: "2025-12-01", TotalSleepSeconds: 25200}},
			NextToken: &next,
		})
	})

	sessions, err := client.Sleep.Sessions(t.Context(), "2025-12-01", "2025-12-07")
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	if calls != MaxPages {
		t.Errorf("calls = %d, want %d", calls, MaxPages)
	}
	if len(sessions) != MaxPages {
		t.Errorf("len(sessions) = %d, want %d", len(sessions), MaxPages)
	}
}

func TestDailyScoresSkipsUnscoredDays(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		score := 85
		_ = go_json.NewEncoder(w).Encode(PaginatedResponse[DailySleepRecord]{
			Data: []DailySleepRecord{
				{Day: "2025-12-01", Score: &score},
				{Day: "2025-12-02"}, // unscored
				{Day: "garbage", Score: &score},
			},
		})
	})

	scores, err := client.Sleep.DailyScores(t.Context(), "2025-12-01", "2025-12-07")
	if err != nil {
		t.Fatalf("DailyScores() error = %v", err)
	}

	want := []timeline.ScoreEntry{{Date: "2025-12-01", Score: 85}}
	if diff := cmp.Diff(want, scores); diff != "" {
		t.Errorf("DailyScores() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadinessScores(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/usercollection/daily_readiness" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		score := 77
		_ = go_json.NewEncoder(w).Encode(PaginatedResponse[DailyReadinessRecord]{
			Data: []DailyReadinessRecord{{Day: "2025-12-03", Score: &score}},
		})
	})

	scores, err := client.Readiness.DailyScores(t.Context(), "2025-12-01", "2025-12-07")
	if err != nil {
		t.Fatalf("DailyScores() error = %v", err)
	}
	if len(scores) != 1 || scores[0].Date != "2025-12-03" || scores[0].Score != 77 {
		t.Errorf("scores = %+v", scores)
	}
}

func TestAPIErrorParsing(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"invalid access token"}`)
	})

	_, err := client.Sleep.Sessions(t.Context(), "2025-12-01", "2025-12-07")
	if err == nil {
		t.Fatal("Sessions() error = nil, want APIError")
	}
	if !IsCredentialError(err) {
		t.Errorf("IsCredentialError() = false for %v", err)
	}
}

func TestMalformedPayload(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": "not an array"}`)
	})

	_, err := client.Sleep.Sessions(t.Context(), "2025-12-01", "2025-12-07")
	var malformed *MalformedPayloadError
	if !errors.As(err, &malformed) {
		t.Errorf("Sessions() error = %v, want MalformedPayloadError", err)
	}
}
