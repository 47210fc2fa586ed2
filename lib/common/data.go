package common

import (
	"bytes"
	"encoding/json"
)

type Serializable interface {
	Serialize() ([]byte, error)
}

func EncodeJSONValue(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// MustUnmarshalJSON is only for data written by this node itself, where a
// decoding failure means corrupted storage.
func MustUnmarshalJSON(data []byte, v interface{}) {
	if err := json.Unmarshal(data, v); err != nil {
		panic(err)
	}
}

// JSONMarshalWithoutEscapeHTML keeps `<`, `>` and `&` as is; HAL templated
// links contain them.
func JSONMarshalWithoutEscapeHTML(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
