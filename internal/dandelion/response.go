package dandelion

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/nao1215/entityscan/internal/annotation"
)

// Response headers reporting API usage.
const (
	headerUnits      = "X-DL-units"
	headerUnitsLeft  = "X-DL-units-left"
	headerUnitsReset = "X-DL-units-reset"
)

// Response is a decoded extraction response.
type Response struct {
	// Time is the server-side processing time in milliseconds.
	Time float64 `json:"time"`

	// Lang is the language the text was analyzed in.
	Lang string `json:"lang"`

	// LangConfidence is the API's confidence in Lang when it was detected.
	LangConfidence float64 `json:"langConfidence"`

	// Timestamp is the server time of the response.
	Timestamp string `json:"timestamp"`

	// Annotations are the entities found, in the order returned.
	Annotations []annotation.Annotation `json:"annotations"`

	// Units is the number of API units consumed by the request.
	Units float64 `json:"-"`

	// UnitsLeft is the remaining daily API units, or -1 when unknown.
	UnitsLeft float64 `json:"-"`

	// UnitsReset is when the unit counter resets, as reported by the API.
	UnitsReset string `json:"-"`
}

// apiErrorBody is the JSON body returned with non-2xx responses.
type apiErrorBody struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newAPIError builds an APIError from a non-2xx response body.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}
	var eb apiErrorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
	}
	if apiErr.Body == "" {
		apiErr.Body = http.StatusText(status)
	}
	return apiErr
}

// readUnits copies the usage headers into r.
func (r *Response) readUnits(h http.Header) {
	r.Units = parseHeaderFloat(h.Get(headerUnits), 0)
	r.UnitsLeft = parseHeaderFloat(h.Get(headerUnitsLeft), -1)
	r.UnitsReset = h.Get(headerUnitsReset)
}

// parseHeaderFloat parses a numeric header, returning fallback when it is
// missing or malformed.
func parseHeaderFloat(v string, fallback float64) float64 {
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return f
}
