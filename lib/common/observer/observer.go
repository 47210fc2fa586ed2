// Package observer carries the events of applied operations to the
// subscribers of the stream api.
package observer

import (
	"strings"

	"github.com/GianlucaGuarini/go-observable"
)

var OperationObserver = observable.New()

const (
	ResourceOperation = "op"
	ResourceWinner    = "winner"

	ConditionAll    = "*"
	ConditionSource = "source"
	ConditionTarget = "target"
	ConditionType   = "type"
	ConditionOpHash = "ophash"
)

type Event struct {
	Resource  string `json:"resource"`
	Condition string `json:"condition"`
	Id        string `json:"id,omitempty"`
}

func NewEvent(resource, condition, id string) Event {
	return Event{
		Resource:  resource,
		Condition: condition,
		Id:        id,
	}
}

// String is the observable event name, for example `op-source=GABC` or
// `op-*`.
func (e Event) String() string {
	if e.Condition == ConditionAll {
		return e.Resource + "-" + ConditionAll
	}

	return e.Resource + "-" + e.Condition + "=" + e.Id
}

type Subscribe struct {
	Events []Event `json:"events"`
}

func NewSubscribe(events ...Event) Subscribe {
	return Subscribe{Events: events}
}

// String joins the event names with space, which go-observable treats as
// multiple events.
func (s Subscribe) String() string {
	var names []string
	for _, e := range s.Events {
		names = append(names, e.String())
	}

	return strings.Join(names, " ")
}
