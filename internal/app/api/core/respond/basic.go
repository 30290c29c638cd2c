// Package respond provides a set of utility functions to help with the HTTP response handling.
package respond

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// Status writes a response with the given status code and no body.
func Status(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

// JSON writes a JSON response with the given status code and data.
// A nil data value is written as null. Encoding errors are silently ignored.
func JSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if data == nil {
		_, _ = w.Write([]byte("null"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}

// Data writes a response with the given status code, content type, and data.
// If no content type is provided, it is detected from the data.
func Data(w http.ResponseWriter, code int, contentType string, data []byte) {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(code)

	_, _ = w.Write(data)
}

// Reader streams data with the given status code and content type.
func Reader(w http.ResponseWriter, code int, contentType string, data io.Reader) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)

	_, _ = io.Copy(w, data)
}

// Attachment writes data as a downloadable file.
func Attachment(w http.ResponseWriter, code int, filename, contentType string, data []byte) {
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))

	Data(w, code, contentType, data)
}
