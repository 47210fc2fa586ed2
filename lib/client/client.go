// Package client talks to the ballot api of a node.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/common/observer"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/network/api/resource"
	"boscoin.io/ballot/lib/network/httputils"
	"boscoin.io/ballot/lib/operation"
)

const DefaultTimeout = 10 * time.Second

type QueryKey string

func (qk QueryKey) String() string {
	return string(qk)
}

const (
	QueryLimit   QueryKey = "limit"
	QueryReverse QueryKey = "reverse"
	QueryCursor  QueryKey = "cursor"
)

type Q struct {
	Key   QueryKey
	Value string
}

type Queries []Q

func (qs Queries) toQueryString() string {
	if len(qs) == 0 {
		return ""
	}

	urlValues := neturl.Values{}
	for _, q := range qs {
		switch q.Key {
		case QueryLimit, QueryReverse, QueryCursor:
			urlValues.Add(q.Key.String(), q.Value)
		}
	}

	return "?" + urlValues.Encode()
}

type Client struct {
	URL string

	// HTTP retries the failed requests; it is only for the idempotent
	// requests.
	HTTP   *common.HTTP2Client
	stream *common.HTTP2Client
}

func NewClient(url string) (*Client, error) {
	httpClient, err := common.NewPersistentHTTP2Client(DefaultTimeout, 0, false, &common.DefaultRetrySetting)
	if err != nil {
		return nil, err
	}

	streamClient, err := common.NewHTTP2Client(0, 0, true)
	if err != nil {
		return nil, err
	}

	return &Client{
		URL:    strings.TrimRight(url, "/"),
		HTTP:   httpClient,
		stream: streamClient,
	}, nil
}

func (c *Client) Close() {
	c.HTTP.Close()
	c.stream.Close()
}

// toResponse decodes the body into response; the problem response is
// returned as `*errors.Error`.
func (c *Client) toResponse(resp *http.Response, response interface{}) error {
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var p httputils.Problem
		if err := json.Unmarshal(body, &p); err != nil || len(p.Title) < 1 {
			return fmt.Errorf("unexpected response: status=%d body=%q", resp.StatusCode, string(body))
		}
		return p.ToError()
	}

	return json.Unmarshal(body, response)
}

func (c *Client) get(path string, response interface{}) error {
	headers := http.Header{}
	headers.Set("Accept", "application/json")

	resp, err := c.HTTP.Get(c.URL+path, headers)
	if err != nil {
		return err
	}

	return c.toResponse(resp, response)
}

func (c *Client) LoadBallot() (b Ballot, err error) {
	err = c.get(resource.URLBallot, &b)
	return
}

func (c *Client) LoadProposals() (page ProposalsPage, err error) {
	err = c.get(resource.URLProposals, &page)
	return
}

func (c *Client) LoadProposal(index uint64) (p Proposal, err error) {
	err = c.get(strings.Replace(resource.URLProposal, "{id}", strconv.FormatUint(index, 10), -1), &p)
	return
}

func (c *Client) LoadWinner() (w Winner, err error) {
	err = c.get(resource.URLWinner, &w)
	return
}

func (c *Client) LoadVoter(address string) (v Voter, err error) {
	err = c.get(strings.Replace(resource.URLVoter, "{id}", address, -1), &v)
	return
}

func (c *Client) LoadRecords(queries ...Q) (page RecordsPage, err error) {
	err = c.get(resource.URLOperations+Queries(queries).toQueryString(), &page)
	return
}

func (c *Client) LoadRecord(seq uint64) (r Record, err error) {
	err = c.get(strings.Replace(resource.URLOperation, "{id}", strconv.FormatUint(seq, 10), -1), &r)
	return
}

// SubmitOperation posts the signed operation. It is not retried, the
// duplicated operation is rejected by the node.
func (c *Client) SubmitOperation(op operation.Operation) (r Record, err error) {
	var body []byte
	if body, err = op.Serialize(); err != nil {
		return
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	var resp *http.Response
	if resp, err = c.stream.Post(c.URL+resource.URLOperations, body, headers); err != nil {
		return
	}

	err = c.toResponse(resp, &r)
	return
}

// Stream reads the json lines of the event stream until ctx is done or
// handler returns error.
func (c *Client) Stream(ctx context.Context, method, path string, body []byte, handler func([]byte) error) error {
	request, err := http.NewRequest(method, c.URL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "text/event-stream")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.stream.Do(request.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return c.toResponse(resp, nil)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if err := handler(line); err != nil {
			return err
		}
	}
}

func (c *Client) StreamWinner(ctx context.Context, handler func(Winner)) error {
	return c.Stream(ctx, "GET", resource.URLWinner, nil, func(b []byte) error {
		var w Winner
		if err := json.Unmarshal(b, &w); err != nil {
			return err
		}
		handler(w)
		return nil
	})
}

// Subscribe streams the records of the operations which match events.
func (c *Client) Subscribe(ctx context.Context, handler func(Record), events ...observer.Event) error {
	for _, e := range events {
		if e.Resource != observer.ResourceOperation {
			return errors.BadRequestParameter.Clone().SetData("resource", e.Resource)
		}
	}

	body, err := json.Marshal(observer.NewSubscribe(events...))
	if err != nil {
		return err
	}

	return c.Stream(ctx, "POST", resource.URLSubscribe, body, func(b []byte) error {
		var r Record
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		handler(r)
		return nil
	})
}
