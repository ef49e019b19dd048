package server

import (
	"context"
	"net/http"
)

// HealthReport is the /health body. It is not wrapped in an [Envelope].
type HealthReport struct {
	Status    string `json:"status"`
	Service   string `json:"servico"`
	Port      int    `json:"porta"`
	Catalog   string `json:"catalogo,omitempty"`
	Timestamp string `json:"timestamp"`
}

// DependencyCheck reports whether a downstream service is reachable.
type DependencyCheck func(ctx context.Context) bool

// HealthHandler answers GET /health. The optional catalog check is reported but never
// turns the response into a failure.
type HealthHandler struct {
	service string
	port    int
	catalog DependencyCheck
}

func NewHealthHandler(service string, port int, catalog DependencyCheck) *HealthHandler {
	return &HealthHandler{service: service, port: port, catalog: catalog}
}

func (h *HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := HealthReport{
		Status:    "OK",
		Service:   h.service,
		Port:      h.port,
		Timestamp: timestamp(),
	}

	if h.catalog != nil {
		report.Catalog = "offline"
		if h.catalog(r.Context()) {
			report.Catalog = "online"
		}
	}

	writeJSON(w, http.StatusOK, report)
}
