package client

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/common/observer"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/network/api"
	"boscoin.io/ballot/lib/network/api/resource"
	"boscoin.io/ballot/lib/runner"
)

func prepareServer(t *testing.T, proposals ...string) (*Client, *runner.BallotRunner, *keypair.Full, func()) {
	r, chair := runner.TestMakeBallotRunner(t, proposals...)

	router := mux.NewRouter()
	api.NewNetworkHandlerAPI(r, resource.APIPrefix).RegisterHandlers(router, api.Middlewares{})
	ts := httptest.NewServer(router)

	c, err := NewClient(ts.URL)
	require.NoError(t, err)

	return c, r, chair, func() {
		c.Close()
		ts.Close()
		r.Storage().Close()
	}
}

func TestQueries(t *testing.T) {
	require.Equal(t, "", Queries(nil).toQueryString())

	q := Queries{
		{Key: QueryCursor, Value: "3"},
		{Key: QueryLimit, Value: "10"},
		{Key: QueryKey("findme"), Value: "1"},
	}
	require.Equal(t, "?cursor=3&limit=10", q.toQueryString())
}

func TestClientBallot(t *testing.T) {
	c, _, chair, done := prepareServer(t, "P1", "P2")
	defer done()

	voter := keypair.Random()

	{
		op := runner.TestMakeGiveRightToVote(chair, voter.Address())
		record, err := c.SubmitOperation(op)
		require.NoError(t, err)
		require.Equal(t, uint64(1), record.Seq)
		require.Equal(t, op.GetHash(), record.Hash)
		require.Equal(t, voter.Address(), record.Target)

		// duplicated
		_, err = c.SubmitOperation(op)
		require.True(t, errors.Is(err, errors.AlreadyEnrolled))
	}

	{
		_, err := c.SubmitOperation(runner.TestMakeVote(voter, 1))
		require.NoError(t, err)

		_, err = c.SubmitOperation(runner.TestMakeVote(voter, 0))
		require.True(t, errors.Is(err, errors.AlreadyVoted))
	}

	{
		b, err := c.LoadBallot()
		require.NoError(t, err)
		require.Equal(t, chair.Address(), b.Chairperson)
		require.Equal(t, 2, b.Voters)
		require.Equal(t, uint64(2), b.Records)
		require.Equal(t, "P2", b.Winner.Name)
	}

	{
		page, err := c.LoadProposals()
		require.NoError(t, err)
		require.Equal(t, 2, len(page.Embedded.Records))
		require.Equal(t, uint64(1), page.Embedded.Records[1].VoteCount)

		p, err := c.LoadProposal(0)
		require.NoError(t, err)
		require.Equal(t, "P1", p.Name)

		_, err = c.LoadProposal(2)
		require.True(t, errors.Is(err, errors.InvalidProposal))
	}

	{
		w, err := c.LoadWinner()
		require.NoError(t, err)
		require.Equal(t, uint64(1), w.Index)
		require.Equal(t, "P2", w.Name)
	}

	{
		v, err := c.LoadVoter(voter.Address())
		require.NoError(t, err)
		require.True(t, v.Voted)
		require.Equal(t, "VOTED", v.State)
		require.Equal(t, uint64(1), *v.Vote)

		_, err = c.LoadVoter("findme")
		require.True(t, errors.Is(err, errors.BadPublicAddress))
	}

	{
		page, err := c.LoadRecords(Q{Key: QueryReverse, Value: "true"}, Q{Key: QueryLimit, Value: "1"})
		require.NoError(t, err)
		require.Equal(t, 1, len(page.Embedded.Records))
		require.Equal(t, uint64(2), page.Embedded.Records[0].Seq)
		require.Equal(t, "vote", page.Embedded.Records[0].Type)

		r, err := c.LoadRecord(1)
		require.NoError(t, err)
		require.Equal(t, "give-right-to-vote", r.Type)

		_, err = c.LoadRecord(3)
		require.True(t, errors.Is(err, errors.StorageRecordDoesNotExist))
	}
}

func TestClientSubscribe(t *testing.T) {
	c, r, chair, done := prepareServer(t, "P1", "P2")
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Record)
	finished := make(chan error)
	go func() {
		finished <- c.Subscribe(
			ctx,
			func(r Record) {
				select {
				case received <- r:
				case <-ctx.Done():
				}
			},
			observer.NewEvent(observer.ResourceOperation, observer.ConditionSource, chair.Address()),
			observer.NewEvent(observer.ResourceOperation, observer.ConditionType, "vote"),
		)
	}()

	// keep submitting until the subscription starts to receive
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			case <-time.After(20 * time.Millisecond):
				r.Submit(runner.TestMakeGiveRightToVote(chair, keypair.Random().Address()))
			}
		}
	}()

	select {
	case record := <-received:
		require.Equal(t, "give-right-to-vote", record.Type)
		require.Equal(t, chair.Address(), record.Source)
		require.NotEmpty(t, record.Target)
	case <-time.After(5 * time.Second):
		require.Fail(t, "record was not streamed")
	}

	close(stop)
	cancel()
	require.NoError(t, <-finished)
	wg.Wait()

	err := c.Subscribe(context.Background(), func(Record) {}, observer.NewEvent(observer.ResourceWinner, observer.ConditionAll, ""))
	require.True(t, errors.Is(err, errors.BadRequestParameter))
}
