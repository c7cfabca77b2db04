package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandlerExposesContestMetrics(t *testing.T) {
	before := testutil.ToFloat64(SessionsFinished().WithLabelValues("expired"))
	SessionsFinished().WithLabelValues("expired").Inc()
	if got := testutil.ToFloat64(SessionsFinished().WithLabelValues("expired")); got != before+1 {
		t.Fatalf("finished counter = %v, want %v", got, before+1)
	}
	Executions().WithLabelValues("run", "ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"contest_session_finished_total", "contest_execution_requests_total"} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}
