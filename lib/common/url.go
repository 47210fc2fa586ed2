package common

import (
	"strings"

	"boscoin.io/ballot/lib/errors"
)

var (
	TrueQueryStringValue  []string = []string{"true", "yes", "1"}
	FalseQueryStringValue []string = []string{"false", "no", "0"}
)

// ParseBoolQueryString parses 'true', '1', 'yes' as true and 'false', '0',
// 'no' as false; anything else is `errors.BadRequestParameter`.
func ParseBoolQueryString(v string) (yesno bool, err error) {
	if _, yesno = InStringArray(TrueQueryStringValue, strings.ToLower(v)); yesno {
		return
	}
	if _, ok := InStringArray(FalseQueryStringValue, strings.ToLower(v)); ok {
		yesno = false
		return
	}

	err = errors.BadRequestParameter.Clone().SetData("value", v)
	return
}
