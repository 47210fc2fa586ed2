package common

import (
	"net/url"
	"os"

	uuid "github.com/satori/go.uuid"
)

// GenerateUUID returns random uuid(v4).
func GenerateUUID() string {
	return uuid.Must(uuid.NewV4(), nil).String()
}

func GetENVValue(key, defaultValue string) (v string) {
	var found bool
	if v, found = os.LookupEnv(key); !found {
		return defaultValue
	}

	return
}

func GetUrlQuery(query url.Values, key, defaultValue string) string {
	v := query.Get(key)
	if len(v) > 0 {
		return v
	}

	return defaultValue
}

func InStringArray(a []string, s string) (index int, found bool) {
	for index = range a {
		if a[index] == s {
			found = true
			return
		}
	}
	return
}
