package services

import (
	"time"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

// LevelChange is the outcome of running the demotion hysteresis machine.
// Event is empty for no-op transitions.
type LevelChange struct {
	Level      int
	GraceUntil *time.Time
	Event      string
}

// ResolveLevelChange applies the grace state machine to a freshly computed
// level:
//
//   - promotion wins immediately and clears any open grace window;
//   - an unchanged level changes nothing. A user in grace who recovers to
//     exactly the protected level stays in grace; the window is not cleared;
//   - a drop outside grace opens a window and keeps the protected level
//     (unless hysteresis is disabled, then the demotion lands at once);
//   - a drop inside an open window changes nothing;
//   - a drop after the window expired applies the demotion.
func ResolveLevelChange(current int, graceUntil *time.Time, computed int, now time.Time, graceDays int) LevelChange {
	switch {
	case computed > current:
		return LevelChange{Level: computed, Event: models.EventLevelUp}
	case computed == current:
		if graceUntil != nil && now.After(*graceUntil) {
			// expired window with a recovered level: nothing to protect
			return LevelChange{Level: current}
		}
		return LevelChange{Level: current, GraceUntil: graceUntil}
	}

	// computed < current
	if graceUntil == nil {
		if graceDays <= 0 {
			return LevelChange{Level: computed, Event: models.EventLevelDown}
		}
		until := now.Add(time.Duration(graceDays) * 24 * time.Hour)
		return LevelChange{Level: current, GraceUntil: &until, Event: models.EventGraceStarted}
	}

	if !now.After(*graceUntil) {
		return LevelChange{Level: current, GraceUntil: graceUntil}
	}

	return LevelChange{Level: computed, Event: models.EventLevelDown}
}
