package client

// Kind is the terminal classification of a fetch.
type Kind int

const (
	// KindSuccess means the request returned 200 and the body was decoded.
	KindSuccess Kind = iota

	// KindAbsent means the service answered definitively that there is no
	// data for this request (4xx). Not retried.
	KindAbsent

	// KindFailed means the request could not be completed: retries were
	// exhausted, the body could not be parsed, or the context was cancelled.
	KindFailed
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindAbsent:
		return "absent"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of Fetch. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Outcome struct {
	Kind Kind

	// JSON holds the decoded document when Kind is KindSuccess and the
	// response declared a JSON content type.
	JSON any

	// Text holds the raw body when Kind is KindSuccess and the response was
	// not JSON.
	Text string

	// Err holds the terminal error when Kind is KindFailed.
	Err error
}

// Map returns the JSON payload as an object, or nil if the outcome is not a
// successful JSON object response.
func (o Outcome) Map() map[string]any {
	m, _ := o.JSON.(map[string]any)
	return m
}

func success(jsonDoc any, text string) Outcome {
	return Outcome{Kind: KindSuccess, JSON: jsonDoc, Text: text}
}

func absent() Outcome {
	return Outcome{Kind: KindAbsent}
}

func failed(err error) Outcome {
	return Outcome{Kind: KindFailed, Err: err}
}
