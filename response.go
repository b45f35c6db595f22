package endpoint

import "encoding/json"

// response is the envelope for successful discovery responses.
// This wraps the actual result in a {"result": ...} structure.
type response struct {
	Result any `json:"result"`
}

// errorResponse is the envelope for error responses.
// This wraps the error in an {"error": {...}} structure.
type errorResponse struct {
	Error *Error `json:"error"`
}

// Descriptor is the discovery document served for an endpoint.
type Descriptor struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Reflection any    `json:"reflection"`
}

// Describe returns the discovery document for e. The reflection value is
// forwarded verbatim.
func (e *Endpoint) Describe() Descriptor {
	return Descriptor{
		Name:       e.name,
		Path:       e.path,
		Reflection: e.reflection,
	}
}

// marshalResponse encodes a successful response envelope.
func marshalResponse(result any, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(response{Result: result}, "", "  ")
	} else {
		data, err = json.Marshal(response{Result: result})
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// encodeErrorResponse writes an error response.
func encodeErrorResponse(w jsonWriter, err *Error) error {
	return json.NewEncoder(w).Encode(errorResponse{Error: err})
}

// jsonWriter is satisfied by http.ResponseWriter and allows testing.
type jsonWriter interface {
	Write([]byte) (int, error)
}
