package source_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shift-etl/internal/model"
	"shift-etl/internal/source"
)

func newClient(baseURL string) *source.Client {
	return source.New(baseURL, 5*time.Second, zap.NewNop())
}

func TestFetchAll_WalksAllPages(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := model.ShiftsPage{}
		switch r.URL.Query().Get("page") {
		case "", "1":
			page.Results = []model.RawShift{
				{ID: "s1", Date: "2025-01-01"},
				{ID: "s2", Date: "2025-01-02"},
			}
			page.Links = model.PageLinks{Base: srv.URL, Next: "/api/shifts?page=2"}
		case "2":
			page.Results = []model.RawShift{{ID: "s3", Date: "2025-01-03"}}
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	records, err := newClient(srv.URL + "/api/shifts").FetchAll(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "s1", records[0].ID, "page order is preserved")
	assert.Equal(t, "s3", records[2].ID)
}

func TestFetchAll_NonSuccessStatusAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	records, err := newClient(srv.URL).FetchAll(context.Background())
	require.Error(t, err)
	assert.Nil(t, records, "no partial record set on failure")
	assert.Contains(t, err.Error(), "status=502")
}

func TestFetchAll_FailureOnLaterPageAborts(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(model.ShiftsPage{
			Results: []model.RawShift{{ID: "s1", Date: "2025-01-01"}},
			Links:   model.PageLinks{Base: srv.URL, Next: "/?page=2"},
		})
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
}

func TestFetchAll_MalformedBodyAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchAll(context.Background())
	assert.Error(t, err)
}
