// Package bot suggests order volumes for a tier from its demand history.
// The heuristic is a moving-average demand forecast with a pipeline
// correction: order enough to cover the forecast over the lead time plus
// one round, minus what is already on hand or in transit.
package bot

import "github.com/chainsim/beergame/internal/game"

// DefaultWindow is the number of recent incoming orders averaged for the
// demand forecast.
const DefaultWindow = 4

// SuggestOrder recommends a non-negative order volume for the player.
// With no demand history it falls back to a neutral 10 units.
func SuggestOrder(f *game.Factors, p *game.Player, window int) int {
	if len(p.IncomingOrders) == 0 {
		return 10
	}
	forecast := forecastDemand(p.IncomingOrders, window)

	// Goods already ordered but not yet in inventory.
	pipeline := 0
	for _, o := range p.OutgoingOrders {
		if len(o.Deliveries) == 0 {
			pipeline += o.Volume
			continue
		}
		for _, d := range o.Deliveries {
			if !d.Arrived {
				pipeline += d.Volume
			}
		}
	}

	leadRounds := (p.Role.LeadTime + f.RoundIncrement - 1) / f.RoundIncrement
	target := forecast * (leadRounds + 1)
	position := p.Inventory + pipeline

	order := target - position
	if order < 0 {
		order = 0
	}
	return order
}

func forecastDemand(orders []*game.Order, window int) int {
	if window < 1 {
		window = 1
	}
	start := len(orders) - window
	if start < 0 {
		start = 0
	}
	sum, count := 0, 0
	for _, o := range orders[start:] {
		sum += o.Volume
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / count
}
