package httputils

import (
	"fmt"
	"net/http"

	"boscoin.io/ballot/lib/errors"
)

const ProblemTypePrefix = "https://boscoin.io/ballot/problems/"

// Problem is the RFC 7807 problem document. `Code` and `Data` carry the
// `errors.Error` the problem was made from.
type Problem struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status,omitempty"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Code     uint                   `json:"code,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

func NewStatusProblem(status int) Problem {
	return Problem{Type: "about:blank", Title: http.StatusText(status), Status: status}
}

func NewDetailedStatusProblem(status int, detail string) Problem {
	p := NewStatusProblem(status)
	p.Detail = detail
	return p
}

func NewErrorProblem(err error, status int) Problem {
	p := NewStatusProblem(status)

	e, ok := err.(*errors.Error)
	if !ok {
		p.Detail = err.Error()
		return p
	}

	p.Type = fmt.Sprintf("%s%d", ProblemTypePrefix, e.Code)
	p.Title = e.Message
	p.Code = e.Code
	if len(e.Data) > 0 {
		p.Data = e.Data
	}

	return p
}

func (p Problem) SetInstance(instance string) Problem {
	p.Instance = instance
	return p
}

func (p Problem) SetDetail(detail string) Problem {
	p.Detail = detail
	return p
}

// ToError converts the problem back to `*errors.Error`; problems which were
// not made from `errors.Error` have zero code.
func (p Problem) ToError() *errors.Error {
	e := errors.NewError(p.Code, p.Title)
	for k, v := range p.Data {
		e.SetData(k, v)
	}
	if len(p.Detail) > 0 {
		e.SetData("detail", p.Detail)
	}

	return e
}
