package httputils

import (
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/errors"
)

func TestStatusCode(t *testing.T) {
	require.Equal(t, http.StatusForbidden, StatusCode(errors.Unauthorized))
	require.Equal(t, http.StatusBadRequest, StatusCode(errors.AlreadyVoted))
	require.Equal(t, http.StatusBadRequest, StatusCode(errors.SelfDelegation.Clone().SetData("to", "GABC")))
	require.Equal(t, http.StatusConflict, StatusCode(errors.OperationAlreadyProcessed))
	require.Equal(t, http.StatusNotFound, StatusCode(errors.StorageRecordDoesNotExist))
	require.Equal(t, http.StatusInternalServerError, StatusCode(errors.StorageCoreError))
	require.Equal(t, http.StatusInternalServerError, StatusCode(io.ErrShortWrite))
}

func getProblem(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	var m map[string]interface{}
	common.MustUnmarshalJSON(b, &m)

	return resp, m
}

func TestProblem(t *testing.T) {
	router := mux.NewRouter()

	statusProblem := NewStatusProblem(http.StatusBadRequest)
	detailedStatusProblem := NewDetailedStatusProblem(http.StatusBadRequest, "paramaters are not enough")

	router.HandleFunc("/problem_status_default", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusBadRequest, statusProblem)
	})
	router.HandleFunc("/problem_status_with_detail_instance", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusBadRequest, detailedStatusProblem.SetInstance("http://boscoin.io/details/1"))
	})
	router.HandleFunc("/problem_with_error", func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, errors.Unauthorized.Clone().SetData("caller", "GABC"))
	})

	ts := httptest.NewServer(router)
	defer ts.Close()

	{
		resp, m := getProblem(t, ts.URL+"/problem_status_default")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
		require.Equal(t, "about:blank", m["type"])
		require.Equal(t, "Bad Request", m["title"])
		require.Equal(t, float64(http.StatusBadRequest), m["status"])
		require.Empty(t, m["detail"])
		require.Empty(t, m["instance"])
	}

	{
		_, m := getProblem(t, ts.URL+"/problem_status_with_detail_instance")
		require.Equal(t, "paramaters are not enough", m["detail"])
		require.Equal(t, "http://boscoin.io/details/1", m["instance"])
	}

	{
		resp, m := getProblem(t, ts.URL+"/problem_with_error")
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, ProblemTypePrefix+"100", m["type"])
		require.Equal(t, errors.Unauthorized.Message, m["title"])
		require.Equal(t, float64(errors.Unauthorized.Code), m["code"])
		require.Equal(t, map[string]interface{}{"caller": "GABC"}, m["data"])
	}
}

func TestProblemToError(t *testing.T) {
	p := NewErrorProblem(errors.AlreadyVoted.Clone().SetData("voter", "GABC"), http.StatusBadRequest)

	e := p.ToError()
	require.True(t, errors.Is(e, errors.AlreadyVoted))
	require.Equal(t, "The voter already voted.", e.Message)
	require.Equal(t, "GABC", e.Data["voter"])
}

func TestPageQuery(t *testing.T) {
	{
		r := httptest.NewRequest("GET", "/api/v1/operations", nil)
		p, err := NewPageQuery(r)
		require.NoError(t, err)
		require.Equal(t, DefaultLimit, p.Limit())
		require.Equal(t, uint64(0), p.Cursor())
		require.False(t, p.Reverse())
		require.Equal(t, "/api/v1/operations?cursor=5&limit=100&reverse=false", p.NextLink(5))
		require.Equal(t, "/api/v1/operations?cursor=3&limit=100&reverse=true", p.PrevLink(3))
	}

	{
		r := httptest.NewRequest("GET", "/api/v1/operations?cursor=10&limit=5&reverse=yes", nil)
		p, err := NewPageQuery(r)
		require.NoError(t, err)
		require.Equal(t, uint64(5), p.Limit())
		require.Equal(t, uint64(10), p.Cursor())
		require.True(t, p.Reverse())
	}

	for _, query := range []string{"cursor=a", "limit=-1", "limit=0", "reverse=findme"} {
		r := httptest.NewRequest("GET", "/api/v1/operations?"+query, nil)
		_, err := NewPageQuery(r)
		require.True(t, errors.Is(err, errors.BadRequestParameter), query)
	}

	{
		r := httptest.NewRequest("GET", "/api/v1/operations?limit=1001", nil)
		_, err := NewPageQuery(r)
		require.True(t, errors.Is(err, errors.PageQueryLimitMaxExceed))
	}
}

func TestIsEventStream(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/subscribe", nil)
	require.False(t, IsEventStream(r))

	r.Header.Set("Accept", "text/event-stream")
	require.True(t, IsEventStream(r))
}
