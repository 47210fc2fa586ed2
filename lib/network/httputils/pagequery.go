package httputils

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/errors"
)

const (
	DefaultLimit uint64 = 100
	MaxLimit     uint64 = 1000
)

// PageQuery parses `cursor`, `limit` and `reverse` of list request. The
// cursor is the sequence of the last record already seen.
type PageQuery struct {
	request *http.Request
	cursor  uint64
	reverse bool
	limit   uint64
}

func NewPageQuery(r *http.Request) (*PageQuery, error) {
	p := &PageQuery{
		request: r,
		limit:   DefaultLimit,
	}
	err := p.parseRequest()
	return p, err
}

func (p *PageQuery) Limit() uint64 {
	return p.limit
}

func (p *PageQuery) Reverse() bool {
	return p.reverse
}

func (p *PageQuery) Cursor() uint64 {
	return p.cursor
}

func (p *PageQuery) SelfLink() string {
	return p.request.URL.String()
}

func (p *PageQuery) PrevLink(cursor uint64) string {
	return fmt.Sprintf("%s?%s", p.request.URL.Path, p.urlValues(cursor, !p.reverse).Encode())
}

func (p *PageQuery) NextLink(cursor uint64) string {
	return fmt.Sprintf("%s?%s", p.request.URL.Path, p.urlValues(cursor, p.reverse).Encode())
}

func (p *PageQuery) parseRequest() error {
	q := p.request.URL.Query()
	if r := q.Get("reverse"); r != "" {
		reverse, err := common.ParseBoolQueryString(r)
		if err != nil {
			return err
		}
		p.reverse = reverse
	}

	if c := q.Get("cursor"); c != "" {
		cursor, err := strconv.ParseUint(c, 10, 64)
		if err != nil {
			return errors.BadRequestParameter.Clone().SetData("cursor", c)
		}
		p.cursor = cursor
	}

	if l := q.Get("limit"); l != "" {
		limit, err := strconv.ParseUint(l, 10, 64)
		if err != nil || limit < 1 {
			return errors.BadRequestParameter.Clone().SetData("limit", l)
		}
		if limit > MaxLimit {
			return errors.PageQueryLimitMaxExceed.Clone().SetData("max", MaxLimit)
		}
		p.limit = limit
	}

	return nil
}

func (p PageQuery) urlValues(cursor uint64, reverse bool) url.Values {
	v := url.Values{
		"reverse": []string{strconv.FormatBool(reverse)},
		"limit":   []string{strconv.FormatUint(p.limit, 10)},
	}

	if cursor > 0 {
		v.Set("cursor", strconv.FormatUint(cursor, 10))
	}

	return v
}
