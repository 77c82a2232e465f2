package app

import (
	"path/filepath"

	"photein/internal/config"
	"photein/internal/domain"
)

// Planner decides, per configured library, whether and where a file goes.
type Planner struct {
	Destinations []config.Destination
	Collisions   CollisionResolver
}

// Plan returns one entry per destination in master, desktop, web order.
// Paths are <root>/<YYYY>/<stamp><ext>, collision-resolved per directory.
func (p *Planner) Plan(m Media, ts domain.CaptureTimestamp) ([]domain.DestinationPlan, error) {
	plans := make([]domain.DestinationPlan, 0, len(p.Destinations))
	for _, dest := range p.Destinations {
		plan := domain.DestinationPlan{
			Profile:  dest.Profile,
			Root:     dest.Root,
			Eligible: m.Eligible(dest.Profile),
		}
		if !plan.Eligible {
			plans = append(plans, plan)
			continue
		}

		plan.Ext = m.TargetExt(dest.Profile)
		plan.DesiredPath = filepath.Join(dest.Root, ts.Year(), ts.Stamp()+plan.Ext)
		final, err := p.Collisions.Resolve(plan.DesiredPath)
		if err != nil {
			return nil, err
		}
		plan.FinalPath = final
		plan.Optimize = dest.Profile != domain.Master
		plans = append(plans, plan)
	}
	return plans, nil
}
