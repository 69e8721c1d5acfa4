package sensor

import "context"

// Health probes the store by running a trivial query on a borrowed connection.
//
// It never returns an error: failures are reported in Health.Error.
func (s *Store) Health(ctx context.Context) Health {
	if s.db == nil {
		return Health{Error: "database not configured"}
	}
	if err := s.db.HealthCheck(ctx); err != nil {
		return Health{Error: err.Error()}
	}
	return Health{Healthy: true}
}
