package ports

import "context"

// RawResponse is the transport-neutral view of a backend response.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carries a 2xx status.
func (r *RawResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport is the REST-shaped collaborator used to reach the trade backend.
// Paths are relative to the backend base URL configured on the adapter.
// A non-2xx response is returned together with an error wrapping ErrRemoteRejected.
type Transport interface {
	// Get fetches a resource (the trade list).
	Get(ctx context.Context, path string) (*RawResponse, error)
	// Post sends a JSON body (dedicated exit operation).
	Post(ctx context.Context, path string, body any) (*RawResponse, error)
	// Put sends a JSON body (generic status update).
	Put(ctx context.Context, path string, body any) (*RawResponse, error)
}
