package roster

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/torcida/torcida/internal/config"
)

func newTestService(t *testing.T, url string) *Service {
	t.Helper()
	return New(config.RosterConfig{URL: url, TimeoutSeconds: 2}, log.New(io.Discard, "", 0))
}

func TestLoadParsesStandings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"standings":[{"rows":[
			{"team":{"id":44,"name":"Liverpool"}},
			{"team":{"id":17,"name":"Manchester City"}}
		]}]}`)
	}))
	defer srv.Close()

	s := newTestService(t, srv.URL)
	s.Load(context.Background())

	teams := s.Teams()
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	if teams[0].Name != "Liverpool" || teams[0].ID != 44 {
		t.Errorf("unexpected first team: %#v", teams[0])
	}
	if teams[0].Flag == "" {
		t.Error("expected a derived flag URL")
	}
}

func TestLoadFallsBack(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"http error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"invalid json": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "not json")
		},
		"empty standings": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"standings":[]}`)
		},
		"single team": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"standings":[{"rows":[{"team":{"id":44,"name":"Liverpool"}}]}]}`)
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			s := newTestService(t, srv.URL)
			s.Load(context.Background())

			if len(s.Teams()) != 10 {
				t.Fatalf("expected the 10-team fallback roster, got %d teams", len(s.Teams()))
			}
		})
	}
}
