package httpcache

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"boscoin.io/ballot/lib/common"
)

// NewAdapter makes the cache adapter from uri:
//
// 	memory://?size=1000
// 	redis://127.0.0.1:6379,127.0.0.1:6380
func NewAdapter(uri string) (Adapter, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(err, "invalid cache uri")
	}

	switch parsed.Scheme {
	case "memory":
		s := common.GetUrlQuery(parsed.Query(), "size", strconv.Itoa(DefaultMemCacheSize))
		size, err := strconv.Atoi(s)
		if err != nil || size < 1 {
			return nil, fmt.Errorf("invalid cache size: %q", s)
		}
		return NewMemCacheAdapter(size)
	case "redis":
		if len(parsed.Host) < 1 {
			return nil, errors.New("redis address is missing")
		}

		addrs := map[string]string{}
		for i, addr := range strings.Split(parsed.Host, ",") {
			addrs[fmt.Sprintf("server%d", i)] = addr
		}
		return NewRedisCacheAdapter(&RedisRingOptions{Addrs: addrs}), nil
	default:
		return nil, fmt.Errorf("unknown cache adapter: %q", parsed.Scheme)
	}
}
