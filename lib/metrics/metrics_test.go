package metrics

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	InitPrometheusMetrics()
	InitPrometheusMetrics()

	SetVersion()
	Ballot.AddOperation("vote", StatusApplied)
	Ballot.SetRecords(3)
	Ballot.SetVoters(2)
	Ballot.SetVoteCount(1, 2)
	API.AddRequest("/api/v1/winner", "GET", 200, time.Millisecond)
	API.AddRequest("/api/v1/operations", "POST", 400, time.Millisecond)

	server := httptest.NewServer(promhttp.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(b)

	require.Contains(t, body, `ballot_ballot_operations_total{status="applied",type="vote"} 1`)
	require.Contains(t, body, `ballot_ballot_records 3`)
	require.Contains(t, body, `ballot_ballot_voters 2`)
	require.Contains(t, body, `ballot_ballot_vote_count{proposal="1"} 2`)
	require.Contains(t, body, `ballot_api_request_errors_total{endpoint="/api/v1/operations",method="POST",status="400"} 1`)
	require.Contains(t, body, `ballot_version{`)
}
