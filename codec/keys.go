package codec

import "encoding/json"

// StringKey is the identity KeyCodec for string keys.
type StringKey struct{}

func (StringKey) EncodeKey(k string) (string, error) { return k, nil }
func (StringKey) DecodeKey(s string) (string, error) { return s, nil }

// JSONKey renders any comparable key through encoding/json. Works for
// integers and small comparable structs; for plain strings prefer
// StringKey, which avoids the quoting.
type JSONKey[K comparable] struct{}

func (JSONKey[K]) EncodeKey(k K) (string, error) {
	b, err := json.Marshal(k)
	return string(b), err
}

func (JSONKey[K]) DecodeKey(s string) (K, error) {
	var k K
	err := json.Unmarshal([]byte(s), &k)
	return k, err
}
