package sandbox

// ListResponse is the paginated envelope most list endpoints return. The
// therapists endpoint returns a bare array instead, matching the live API's
// mixed surface.
type ListResponse struct {
	Results any `json:"results"`
	Count   int `json:"count"`
}

// ErrorResponse carries the user-facing text the dashboards render verbatim.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type sessionTimeRequest struct {
	Minutes int `json:"minutes"`
}

type statusResponse struct {
	Status string `json:"status"`
}
