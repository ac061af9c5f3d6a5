package types

type RequestSendMessage struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

// RequestSendBatchMessage accepts recipients either as plain number strings
// sharing the top-level message, or as {number, message} objects. Delay is
// the pacing interval in milliseconds, clamped server-side.
type RequestSendBatchMessage struct {
	Recipients []interface{} `json:"recipients"`
	Message    string        `json:"message"`
	Delay      *int          `json:"delay"`
}
