package xsync

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	go_json "github.com/goccy/go-json"
	"github.com/stridelog/stridelog/internal/client/oura"
	"github.com/stridelog/stridelog/internal/client/strava"
	"github.com/stridelog/stridelog/internal/xerrors"
	"github.com/stridelog/stridelog/internal/xslog"
	"golang.org/x/oauth2"
)

func testFetcher(t *testing.T, stravaHandler, ouraHandler http.HandlerFunc) *Fetcher {
	t.Helper()

	stravaSrv := httptest.NewServer(stravaHandler)
	t.Cleanup(stravaSrv.Close)
	ouraSrv := httptest.NewServer(ouraHandler)
	t.Cleanup(ouraSrv.Close)

	logger := xslog.NewLogger(io.Discard, xslog.LevelError)
	stravaClient := strava.New(
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
		strava.WithBaseURL(stravaSrv.URL),
		strava.WithLogger(logger),
	)
	ouraClient := oura.New("test-token",
		oura.WithBaseURL(ouraSrv.URL),
		oura.WithLogger(logger),
	)
	return NewFetcher(stravaClient, ouraClient, logger)
}

func stravaOneRun(w http.ResponseWriter, _ *http.Request) {
	_ = go_json.NewEncoder(w).Encode([]strava.Activity{{
		Name:              "Morning Run",
		Type:              "Run",
		DistanceMeters:    5000,
		MovingTimeSeconds: 1500,
		StartDateLocal:    "2025-12-02T06:30:00Z",
	}})
}

func ouraScore(day string, score int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = go_json.NewEncoder(w).Encode(oura.PaginatedResponse[oura.DailySleepRecord]{
			Data: []oura.DailySleepRecord{{Day: day, Score: &score}},
		})
	}
}

func TestFetchOneSourceDownStillMerges(t *testing.T) {
	t.Parallel()

	ouraHandler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/usercollection/sleep":
			w.WriteHeader(http.StatusInternalServerError)
		case "/usercollection/daily_sleep":
			ouraScore("2025-12-02", 85)(w, r)
		case "/usercollection/daily_readiness":
			ouraScore("2025-12-03", 77)(w, r)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}

	f := testFetcher(t, stravaOneRun, ouraHandler)
	src, err := f.Fetch(t.Context(), "2025-12-01", "2025-12-07")
	if err != nil {
		t.Fatalf("Fetch() error = %v, want partial success", err)
	}

	if len(src.SleepSessions) != 0 {
		t.Errorf("SleepSessions = %+v, want empty for the failed source", src.SleepSessions)
	}
	if len(src.Runs) != 1 || src.Runs[0].Name != "Morning Run" {
		t.Errorf("Runs = %+v, want the fetched run", src.Runs)
	}
	if len(src.SleepScores) != 1 || src.SleepScores[0].Score != 85 {
		t.Errorf("SleepScores = %+v, want the fetched score", src.SleepScores)
	}
	if len(src.Readiness) != 1 || src.Readiness[0].Score != 77 {
		t.Errorf("Readiness = %+v, want the fetched score", src.Readiness)
	}
}

func TestFetchCredentialFailureAborts(t *testing.T) {
	t.Parallel()

	ouraHandler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/usercollection/daily_sleep":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"invalid access token"}`))
		default:
			_ = go_json.NewEncoder(w).Encode(oura.PaginatedResponse[oura.DailySleepRecord]{})
		}
	}

	f := testFetcher(t, stravaOneRun, ouraHandler)
	_, err := f.Fetch(t.Context(), "2025-12-01", "2025-12-07")
	if err == nil {
		t.Fatal("Fetch() error = nil, want unauthorized")
	}
	if appErr := xerrors.As(err); appErr == nil || appErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Fetch() error = %v, want status 401", err)
	}
}

func TestFetchClampsExtendedSessionWindow(t *testing.T) {
	t.Parallel()

	ouraHandler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/usercollection/sleep":
			// the queried window reaches one day past the nominal end
			_ = go_json.NewEncoder(w).Encode(oura.PaginatedResponse[oura.SleepSessionRecord]{
				Data: []oura.SleepSessionRecord{
					{Day: "2025-12-07", TotalSleepSeconds: 25200},
					{Day: "2025-12-08", TotalSleepSeconds: 28800},
				},
			})
		default:
			_ = go_json.NewEncoder(w).Encode(oura.PaginatedResponse[oura.DailySleepRecord]{})
		}
	}
	stravaHandler := func(w http.ResponseWriter, _ *http.Request) {
		_ = go_json.NewEncoder(w).Encode([]strava.Activity{})
	}

	f := testFetcher(t, stravaHandler, ouraHandler)
	src, err := f.Fetch(t.Context(), "2025-12-01", "2025-12-07")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(src.SleepSessions) != 1 || src.SleepSessions[0].Date != "2025-12-07" {
		t.Errorf("SleepSessions = %+v, want only the in-range session", src.SleepSessions)
	}
}
