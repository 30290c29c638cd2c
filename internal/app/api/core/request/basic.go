// Package request provides functions to extract parameters from the request.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodySize limits JSON request bodies.
const maxBodySize = 1 << 20

// Path returns the value of the named path parameter, trimmed of leading and trailing whitespace.
func Path(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}

// Query returns the value of the named query parameter, trimmed of leading and trailing whitespace.
func Query(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryDefault returns the value of the named query parameter.
// If the parameter is not set, it returns the default value.
func QueryDefault(r *http.Request, name string, defaultValue string) string {
	if !r.URL.Query().Has(name) {
		return defaultValue
	}

	return Query(r, name)
}

// BodyJson decodes the JSON value from the request body into the target.
// An empty body, trailing data or a body larger than 1 MiB is an error.
// The body reader is closed after reading.
func BodyJson(r *http.Request, target any) error {
	defer func() {
		_ = r.Body.Close()
	}()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty request body")
		}
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON body")
	}

	return nil
}
