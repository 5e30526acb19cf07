package pix

import "time"

// SetClock overrides the service clock.
func SetClock(s *Service, now func() time.Time) { s.now = now }
