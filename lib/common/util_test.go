package common

import (
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetENVValue(t *testing.T) {
	key := "BALLOT_TEST_GET_ENV_VALUE"
	os.Unsetenv(key)
	require.Equal(t, "default", GetENVValue(key, "default"))

	os.Setenv(key, "")
	defer os.Unsetenv(key)
	require.Equal(t, "", GetENVValue(key, "default"))

	os.Setenv(key, "findme")
	require.Equal(t, "findme", GetENVValue(key, "default"))
}

func TestGetUrlQuery(t *testing.T) {
	q := url.Values{"limit": []string{"10"}}
	require.Equal(t, "10", GetUrlQuery(q, "limit", "100"))
	require.Equal(t, "false", GetUrlQuery(q, "reverse", "false"))
}

func TestInStringArray(t *testing.T) {
	index, found := InStringArray([]string{"vote", "delegate"}, "delegate")
	require.True(t, found)
	require.Equal(t, 1, index)

	_, found = InStringArray([]string{"vote"}, "payment")
	require.False(t, found)
}

func TestJSONMarshalWithoutEscapeHTML(t *testing.T) {
	b, err := JSONMarshalWithoutEscapeHTML(map[string]string{"href": "/operations{?cursor,limit}&a<b"})
	require.NoError(t, err)
	require.Equal(t, `{"href":"/operations{?cursor,limit}&a<b"}`, string(b))
}

func TestParseBoolQueryString(t *testing.T) {
	for _, v := range []string{"true", "YES", "1"} {
		yesno, err := ParseBoolQueryString(v)
		require.NoError(t, err)
		require.True(t, yesno, v)
	}
	for _, v := range []string{"false", "No", "0"} {
		yesno, err := ParseBoolQueryString(v)
		require.NoError(t, err)
		require.False(t, yesno, v)
	}

	_, err := ParseBoolQueryString("findme")
	require.Error(t, err)
}

func TestGenerateUUID(t *testing.T) {
	ids := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateUUID()
		require.Equal(t, 36, len(id))
		require.False(t, ids[id])
		ids[id] = true
	}
}
