package transport

import "encoding/json"

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// fallbackBody is served when a payload cannot be encoded.
var fallbackBody = []byte(`{"status":"error","code":"INTERNAL","error":"internal error"}`)

// Envelope wraps every JSON answer: statistics, health and session-gate rejections.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

func Success(data interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

// Failure carries a machine code and a human message. Data may still hold
// diagnostics, as /health does when a dependency is down.
func Failure(code, message string, data interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: message, Data: data}
}

// Bytes encodes the envelope, degrading to a fixed internal error body.
func (e Envelope) Bytes() []byte {
	out, err := json.Marshal(e)
	if err != nil {
		return fallbackBody
	}
	return out
}
