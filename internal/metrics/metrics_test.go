package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSearch(t *testing.T) {
	before := testutil.ToFloat64(SearchesTotal.WithLabelValues("title", "true"))
	RecordSearch("title", true, 3)
	after := testutil.ToFloat64(SearchesTotal.WithLabelValues("title", "true"))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestRecordProviderRequestLabelsStatus(t *testing.T) {
	okBefore := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("search", "ok"))
	errBefore := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("search", "error"))

	RecordProviderRequest("search", 10*time.Millisecond, nil)
	RecordProviderRequest("search", 10*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("search", "ok")); got != okBefore+1 {
		t.Fatalf("ok counter = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("search", "error")); got != errBefore+1 {
		t.Fatalf("error counter = %v, want %v", got, errBefore+1)
	}
}

func TestRecordFlushAndAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(CatalogFlushesTotal.WithLabelValues("error"))
	RecordFlush(errors.New("disk full"))
	if got := testutil.ToFloat64(CatalogFlushesTotal.WithLabelValues("error")); got != before+1 {
		t.Fatalf("flush error counter = %v, want %v", got, before+1)
	}

	apiBefore := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/search", "200"))
	RecordAPIRequest("POST", "/api/search", 200, 5*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/search", "200")); got != apiBefore+1 {
		t.Fatalf("api counter = %v, want %v", got, apiBefore+1)
	}
}
