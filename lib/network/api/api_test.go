package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/common/observer"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/network/api/resource"
	"boscoin.io/ballot/lib/operation"
	"boscoin.io/ballot/lib/runner"
)

func prepareAPIServer(t *testing.T, proposals ...string) (*httptest.Server, *runner.BallotRunner, *keypair.Full) {
	r, chair := runner.TestMakeBallotRunner(t, proposals...)

	router := mux.NewRouter()
	NewNetworkHandlerAPI(r, resource.APIPrefix).RegisterHandlers(router, Middlewares{})

	return httptest.NewServer(router), r, chair
}

func getJSON(t *testing.T, ts *httptest.Server, url string) (*http.Response, map[string]interface{}) {
	resp, err := ts.Client().Get(ts.URL + url)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	var m map[string]interface{}
	common.MustUnmarshalJSON(b, &m)

	return resp, m
}

func postOperation(t *testing.T, ts *httptest.Server, op operation.Operation) (*http.Response, map[string]interface{}) {
	b, err := op.Serialize()
	require.NoError(t, err)

	resp, err := ts.Client().Post(ts.URL+resource.URLOperations, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	var m map[string]interface{}
	common.MustUnmarshalJSON(body, &m)

	return resp, m
}

func TestHandlerURLPattern(t *testing.T) {
	api := NewNetworkHandlerAPI(nil, resource.APIPrefix)
	require.Equal(t, resource.URLBallot, api.HandlerURLPattern(GetBallotHandlerPattern))
	require.Equal(t, resource.URLVoter, api.HandlerURLPattern(GetVoterHandlerPattern))
	require.Equal(t, resource.URLOperation, api.HandlerURLPattern(GetOperationHandlerPattern))
}

func TestGetBallotHandler(t *testing.T) {
	ts, r, chair := prepareAPIServer(t, "P1", "P2")
	defer ts.Close()
	defer r.Storage().Close()

	resp, m := getJSON(t, ts, resource.URLBallot)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/hal+json", resp.Header.Get("Content-Type"))
	require.Equal(t, chair.Address(), m["chairperson"])
	require.Equal(t, float64(2), m["proposals"])
	require.Equal(t, float64(1), m["voters"])
	require.Equal(t, "P1", m["winner"].(map[string]interface{})["name"])
}

func TestGetProposalHandlers(t *testing.T) {
	ts, r, chair := prepareAPIServer(t, "P1", "P2", "P3")
	defer ts.Close()
	defer r.Storage().Close()

	_, err := r.Submit(runner.TestMakeVote(chair, 2))
	require.NoError(t, err)

	{
		_, m := getJSON(t, ts, resource.URLProposals)
		records := m["_embedded"].(map[string]interface{})["records"].([]interface{})
		require.Equal(t, 3, len(records))
		require.Equal(t, "P3", records[2].(map[string]interface{})["name"])
		require.Equal(t, float64(1), records[2].(map[string]interface{})["vote_count"])
	}

	{
		resp, m := getJSON(t, ts, resource.URLProposals+"/1")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "P2", m["name"])
		require.Equal(t, float64(0), m["vote_count"])
	}

	{ // out of range
		resp, m := getJSON(t, ts, resource.URLProposals+"/3")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
		require.Equal(t, float64(errors.InvalidProposal.Code), m["code"])
	}

	{
		resp, m := getJSON(t, ts, resource.URLProposals+"/findme")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, float64(errors.BadRequestParameter.Code), m["code"])
	}

	{
		_, m := getJSON(t, ts, resource.URLWinner)
		require.Equal(t, "P3", m["name"])
		require.Equal(t, float64(2), m["index"])
	}
}

func TestGetVoterHandler(t *testing.T) {
	ts, r, chair := prepareAPIServer(t, "P1")
	defer ts.Close()
	defer r.Storage().Close()

	{
		resp, m := getJSON(t, ts, "/api/v1/voters/"+chair.Address())
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(1), m["weight"])
		require.Equal(t, "HAS-RIGHTS", m["state"])
	}

	{ // unknown voter has no rights
		resp, m := getJSON(t, ts, "/api/v1/voters/"+keypair.Random().Address())
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(0), m["weight"])
		require.Equal(t, "NO-RIGHTS", m["state"])
	}

	{
		resp, m := getJSON(t, ts, "/api/v1/voters/findme")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, float64(errors.BadPublicAddress.Code), m["code"])
	}
}

func TestPostOperationHandler(t *testing.T) {
	ts, r, chair := prepareAPIServer(t, "P1", "P2")
	defer ts.Close()
	defer r.Storage().Close()

	voter := keypair.Random()
	give := runner.TestMakeGiveRightToVote(chair, voter.Address())

	{
		resp, m := postOperation(t, ts, give)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(1), m["seq"])
		require.Equal(t, give.GetHash(), m["hash"])
		require.Equal(t, voter.Address(), m["target"])
	}

	{ // duplicated
		resp, m := postOperation(t, ts, give)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, float64(errors.AlreadyEnrolled.Code), m["code"])
	}

	{ // not chairperson
		resp, m := postOperation(t, ts, runner.TestMakeGiveRightToVote(voter, chair.Address()))
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, float64(errors.Unauthorized.Code), m["code"])
	}

	{ // already voted
		_, err := r.Submit(runner.TestMakeVote(voter, 1))
		require.NoError(t, err)

		resp, m := postOperation(t, ts, runner.TestMakeVote(voter, 0))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, errors.AlreadyVoted.Message, m["title"])
	}

	{ // not json
		resp, err := ts.Client().Post(ts.URL+resource.URLOperations, "text/plain", bytes.NewReader([]byte("{}")))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	}

	{ // broken body
		resp, err := ts.Client().Post(ts.URL+resource.URLOperations, "application/json; charset=utf-8", bytes.NewReader([]byte("findme")))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	require.Equal(t, uint64(2), r.Info().Records)
}

func TestGetOperationsHandler(t *testing.T) {
	ts, r, chair := prepareAPIServer(t, "P1", "P2")
	defer ts.Close()
	defer r.Storage().Close()

	for i := 0; i < 5; i++ {
		_, err := r.Submit(runner.TestMakeGiveRightToVote(chair, keypair.Random().Address()))
		require.NoError(t, err)
	}

	seqs := func(m map[string]interface{}) (s []float64) {
		for _, r := range m["_embedded"].(map[string]interface{})["records"].([]interface{}) {
			s = append(s, r.(map[string]interface{})["seq"].(float64))
		}
		return
	}

	{
		_, m := getJSON(t, ts, resource.URLOperations+"?limit=2")
		require.Equal(t, []float64{1, 2}, seqs(m))

		next := m["_links"].(map[string]interface{})["next"].(map[string]interface{})["href"].(string)
		require.Equal(t, resource.URLOperations+"?cursor=2&limit=2&reverse=false", next)

		_, m = getJSON(t, ts, next)
		require.Equal(t, []float64{3, 4}, seqs(m))
	}

	{
		_, m := getJSON(t, ts, resource.URLOperations+"?reverse=true&limit=3")
		require.Equal(t, []float64{5, 4, 3}, seqs(m))
	}

	{
		resp, _ := getJSON(t, ts, resource.URLOperations+"?limit=1001")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	{
		resp, m := getJSON(t, ts, resource.URLOperations+"/3")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(3), m["seq"])
		require.Equal(t, string(operation.TypeGiveRightToVote), m["type"])
	}

	{
		resp, m := getJSON(t, ts, resource.URLOperations+"/6")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, float64(errors.StorageRecordDoesNotExist.Code), m["code"])
	}
}

func stream(t *testing.T, ctx context.Context, ts *httptest.Server, method, url string, body []byte) *bufio.Reader {
	req, err := http.NewRequest(method, ts.URL+url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := ts.Client().Do(req.WithContext(ctx))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return bufio.NewReader(resp.Body)
}

func readLine(t *testing.T, reader *bufio.Reader) map[string]interface{} {
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(line), &m))

	return m
}

func TestPostSubscribeHandler(t *testing.T) {
	ts, r, chair := prepareAPIServer(t, "P1", "P2")
	defer ts.Close()
	defer r.Storage().Close()

	voter := keypair.Random()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := observer.NewSubscribe(observer.NewEvent(observer.ResourceOperation, observer.ConditionSource, voter.Address()))
	b, err := json.Marshal(s)
	require.NoError(t, err)
	reader := stream(t, ctx, ts, "POST", resource.URLSubscribe, b)

	_, err = r.Submit(runner.TestMakeGiveRightToVote(chair, voter.Address()))
	require.NoError(t, err)
	vote := runner.TestMakeVote(voter, 1)
	_, err = r.Submit(vote)
	require.NoError(t, err)

	// only the operation of voter
	m := readLine(t, reader)
	require.Equal(t, float64(2), m["seq"])
	require.Equal(t, vote.GetHash(), m["hash"])
	require.Equal(t, voter.Address(), m["source"])
}

func TestPostSubscribeHandlerMultipleEvents(t *testing.T) {
	ts, r, chair := prepareAPIServer(t, "P1", "P2")
	defer ts.Close()
	defer r.Storage().Close()

	voter := keypair.Random()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := observer.NewSubscribe(
		observer.NewEvent(observer.ResourceOperation, observer.ConditionSource, voter.Address()),
		observer.NewEvent(observer.ResourceWinner, observer.ConditionAll, ""),
	)
	b, err := json.Marshal(s)
	require.NoError(t, err)
	reader := stream(t, ctx, ts, "POST", resource.URLSubscribe, b)

	_, err = r.Submit(runner.TestMakeGiveRightToVote(chair, voter.Address()))
	require.NoError(t, err)
	vote := runner.TestMakeVote(voter, 1)
	_, err = r.Submit(vote)
	require.NoError(t, err)

	// winner after the operation of chair
	m := readLine(t, reader)
	require.Equal(t, "P1", m["name"])
	require.Equal(t, float64(0), m["vote_count"])

	m = readLine(t, reader)
	require.Equal(t, float64(2), m["seq"])
	require.Equal(t, vote.GetHash(), m["hash"])

	m = readLine(t, reader)
	require.Equal(t, "P2", m["name"])
	require.Equal(t, float64(1), m["vote_count"])
}

func TestPostSubscribeHandlerBadRequest(t *testing.T) {
	ts, r, _ := prepareAPIServer(t, "P1")
	defer ts.Close()
	defer r.Storage().Close()

	for _, body := range []string{
		"findme",
		`{"events":[]}`,
		`{"events":[{"resource":"account","condition":"*"}]}`,
	} {
		resp, err := ts.Client().Post(ts.URL+resource.URLSubscribe, "application/json", bytes.NewReader([]byte(body)))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestGetWinnerHandlerStream(t *testing.T) {
	ts, r, chair := prepareAPIServer(t, "P1", "P2")
	defer ts.Close()
	defer r.Storage().Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := stream(t, ctx, ts, "GET", resource.URLWinner, nil)

	// current winner first
	m := readLine(t, reader)
	require.Equal(t, "P1", m["name"])

	_, err := r.Submit(runner.TestMakeVote(chair, 1))
	require.NoError(t, err)

	m = readLine(t, reader)
	require.Equal(t, "P2", m["name"])
	require.Equal(t, float64(1), m["vote_count"])
}

func TestGetOperationsHandlerStream(t *testing.T) {
	ts, r, chair := prepareAPIServer(t, "P1", "P2")
	defer ts.Close()
	defer r.Storage().Close()

	_, err := r.Submit(runner.TestMakeGiveRightToVote(chair, keypair.Random().Address()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := stream(t, ctx, ts, "GET", resource.URLOperations, nil)

	// existing records
	m := readLine(t, reader)
	require.Equal(t, float64(1), m["seq"])

	_, err = r.Submit(runner.TestMakeVote(chair, 1))
	require.NoError(t, err)

	m = readLine(t, reader)
	require.Equal(t, float64(2), m["seq"])
	require.Equal(t, string(operation.TypeVote), m["type"])
}

func TestRenderEventStream(t *testing.T) {
	_, err := renderEventStream("event")
	require.True(t, errors.Is(err, errors.BadRequestParameter))

	b, err := renderEventStream("event", &runner.Winner{Index: 1, Name: "P2"})
	require.NoError(t, err)

	var m map[string]interface{}
	common.MustUnmarshalJSON(b, &m)
	require.Equal(t, "P2", m["name"])
	require.Equal(t, resource.URLWinner, m["_links"].(map[string]interface{})["self"].(map[string]interface{})["href"])

	b, err = renderEventStream("event", map[string]int{"a": 1})
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(b))
}
