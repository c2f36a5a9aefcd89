// Package json is a drop-in replacement for encoding/json backed by
// json-iterator/go, used across the HTTP API for request decoding and
// response encoding.
package json

import (
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var j = jsoniter.ConfigCompatibleWithStandardLibrary

// Decode reads a JSON-encoded body into v.
func Decode(r io.Reader, v interface{}) error {
	return j.NewDecoder(r).Decode(v)
}

// Marshal encodes v as JSON using jsoniter's standard-library-compatible config.
func Marshal(v interface{}) ([]byte, error) {
	return j.Marshal(v)
}

// Unmarshal decodes JSON-encoded data into v.
func Unmarshal(data []byte, v interface{}) error {
	return j.Unmarshal(data, v)
}

// Response writes val to w as a JSON response body, setting the
// Content-Type header.
func Response(w http.ResponseWriter, val interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return j.NewEncoder(w).Encode(val)
}
