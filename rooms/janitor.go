package rooms

import (
	"time"

	"github.com/alex-pricope/catch-the-mole/clock"
	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/robfig/cron/v3"
)

// Janitor evicts rooms nobody touched for longer than the configured TTL.
type Janitor struct {
	registry *Registry
	ttl      time.Duration
	clock    clock.Clock
}

func NewJanitor(registry *Registry, ttl time.Duration, c clock.Clock) *Janitor {
	if c == nil {
		c = &clock.DefaultClock{}
	}
	return &Janitor{registry: registry, ttl: ttl, clock: c}
}

// Sweep removes idle rooms and returns their ids.
func (j *Janitor) Sweep() []string {
	if j.ttl <= 0 {
		return nil
	}
	cutoff := j.clock.Now().Add(-j.ttl)
	removed := make([]string, 0)
	for _, room := range j.registry.List() {
		if !room.UpdatedAt.Before(cutoff) {
			continue
		}
		ok, err := j.registry.RemoveIf(room.ID, func(live *Room) bool {
			return live.UpdatedAt.Before(cutoff)
		})
		if err == nil && ok {
			removed = append(removed, room.ID)
		}
	}
	if len(removed) > 0 {
		logging.Log.Infof("ROOMS: evicted %d idle rooms", len(removed))
	}
	return removed
}

// Schedule registers the sweep on c using a cron spec such as "@every 10m".
func (j *Janitor) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		j.Sweep()
	})
	return err
}
