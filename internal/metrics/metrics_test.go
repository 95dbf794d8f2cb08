package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/feed/{post_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/feed/{post_id}", "404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.httpInFlight))
}

func TestRecordLedgerEntryAndHandler(t *testing.T) {
	m := New()
	m.RecordLedgerEntry("reward")
	m.RecordLedgerEntry("reward")
	m.RecordLedgerEntry("expense")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ledgerEntries.WithLabelValues("reward")))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `recycle_ledger_entries_total{kind="expense"} 1`)
}
