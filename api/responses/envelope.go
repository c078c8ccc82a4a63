package responses

// Envelope wraps every successful payload the POS UI receives.
type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody is the machine-readable half of a failed response; Code is one of
// the pkg/errors codes.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
