package observability

import "context"

// HealthStatus represents the health state of a component or application.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of one component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth aggregates component health into an overall status.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that report their health. The
// bootstrap aggregates checkers resolved from the container.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// CheckFunc adapts a plain function to the HealthChecker interface.
type CheckFunc func(ctx context.Context) Health

func (f CheckFunc) CheckHealth(ctx context.Context) Health { return f(ctx) }

// Up is a component health result with status up.
func Up(name string) Health {
	return Health{Name: name, Status: HealthStatusUp}
}

// Down is a component health result with status down and a reason.
func Down(name, message string) Health {
	return Health{Name: name, Status: HealthStatusDown, Message: message}
}

// CheckAll runs every checker under ctx and aggregates the results into one
// report for the named service.
func CheckAll(ctx context.Context, service, version string, checkers ...HealthChecker) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	for _, hc := range checkers {
		sh.AddComponent(hc.CheckHealth(ctx))
	}
	return sh
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent records a component health result. The overall status only
// ever worsens: degraded never recovers an earlier down.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}
