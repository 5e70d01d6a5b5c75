package registration

import (
	"fmt"
	"time"
)

// ReconcileExpiredEvents sweeps events whose end date has passed and
// transitions them to ended. It is best effort: every failure is swallowed
// and retried on the next dashboard load, with no backoff and no alerting.
// Running it against an already-reconciled set is a no-op.
func (s *Service) ReconcileExpiredEvents() int {
	expired, err := s.DB.GetExpiredEvents(time.Now())
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("RECONCILE", fmt.Sprintf("expired event sweep failed, will retry on next load: %v", err))
		}
		return 0
	}

	ended := 0
	for _, event := range expired {
		if err := s.DB.MarkEventEnded(event.ID); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("RECONCILE", fmt.Sprintf("failed to end event %s, will retry on next load: %v", event.ID, err))
			}
			continue
		}
		ended++
		if s.Logger != nil {
			s.Logger.Info("RECONCILE", fmt.Sprintf("event %s transitioned to ended", event.ID))
		}
	}

	return ended
}
