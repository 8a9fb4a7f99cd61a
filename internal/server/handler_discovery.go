package server

import "net/http"

type endpointInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Desc   string `json:"desc"`
}

type discoveryResponse struct {
	Name      string         `json:"name"`
	Endpoints []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name: "dayplan API",
		Endpoints: []endpointInfo{
			{"GET", "/api/v1/health", "service health"},
			{"POST", "/api/v1/plans/", "submit a plan document and run the allocator"},
			{"GET", "/api/v1/plans/", "list stored plan runs"},
			{"GET", "/api/v1/plans/{id}", "fetch one plan run"},
			{"DELETE", "/api/v1/plans/{id}", "delete a plan run"},
		},
	})
}
