package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const bootstrapVolume = 5

// Engine advances games round by round. It holds no per-game state and is
// safe to share across games as long as each game's advances are serialized
// by the caller; the random source is the only shared mutable piece and is
// guarded by its own lock.
type Engine struct {
	factors *Factors
	rndMu   sync.Mutex
	rnd     *rand.Rand
}

// NewEngine builds an engine over shared factors. rnd may be nil, in which
// case a time-seeded source is used; tests pass a fixed seed.
func NewEngine(f *Factors, rnd *rand.Rand) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{factors: f, rnd: rnd}
}

// intn draws from the shared source. Advances for different games run
// concurrently, so every draw goes through the lock.
func (e *Engine) intn(n int) int {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	return e.rnd.Intn(n)
}

// Factors exposes the engine's static tables to the API layer.
func (e *Engine) Factors() *Factors { return e.factors }

// Advance runs one full round. The first advance bootstraps the chain and
// leaves the day counter at 1; every later advance resolves matured
// deliveries, ships new ones, settles the round's charges, propagates
// orders upstream and moves the day forward by the round increment.
//
// All precondition checks run before the first mutation, so a rejected
// advance leaves the game exactly as it was.
func (e *Engine) Advance(g *Game, orders map[RoleID]int) error {
	if err := g.requireRoster(); err != nil {
		return err
	}
	if !g.Started {
		e.bootstrap(g)
		g.Round++
		return nil
	}

	for _, role := range RoleOrder {
		vol, ok := orders[role]
		if !ok || vol < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidOrderVolume, role)
		}
	}
	for _, role := range RoleOrder {
		g.PlayerAt(role).CurrentOrder = &Order{Volume: orders[role]}
	}

	day := g.CurrentDay
	for _, p := range g.Players {
		p.ProcessDeliveries(day)
	}
	e.sendDeliveries(g)
	e.capacityPenalty(g)
	for _, p := range g.Players {
		p.SetHoldingCost(day, e.factors.HoldingCostPerUnit)
	}
	for _, p := range g.Players {
		p.UpdateBalance(day)
	}
	e.propagateOrders(g)

	g.CurrentDay += e.factors.RoundIncrement
	g.Round++
	return nil
}

// bootstrap performs the first-round initialization: initial capital, setup
// charges, one seed order per link of the chain and a pre-filled delivery
// pipe per tier, so the simulation starts with goods already in transit.
func (e *Engine) bootstrap(g *Game) {
	f := e.factors

	for _, p := range g.Players {
		p.Balance = f.InitialCapital
		p.AddPayment(-f.SetupCost, 1, "Setup")
	}

	seedDay := 1 - f.RoundIncrement
	orderC := &Order{OrderDay: seedDay, Volume: bootstrapVolume}
	g.Retailer.IncomingOrders = append(g.Retailer.IncomingOrders, orderC)

	orderR := &Order{OrderDay: seedDay, Volume: bootstrapVolume}
	g.Retailer.OutgoingOrders = append(g.Retailer.OutgoingOrders, orderR)
	g.Manufacturer.IncomingOrders = append(g.Manufacturer.IncomingOrders, orderR)

	orderM := &Order{OrderDay: seedDay, Volume: bootstrapVolume}
	g.Manufacturer.OutgoingOrders = append(g.Manufacturer.OutgoingOrders, orderM)
	g.Processor.IncomingOrders = append(g.Processor.IncomingOrders, orderM)

	orderP := &Order{OrderDay: seedDay, Volume: bootstrapVolume}
	g.Processor.OutgoingOrders = append(g.Processor.OutgoingOrders, orderP)
	g.Farmer.IncomingOrders = append(g.Farmer.IncomingOrders, orderP)

	for _, role := range RoleOrder {
		p := g.PlayerAt(role)
		lead := p.Role.LeadTime
		if role == RoleFarmer {
			// The harvester ships with a one-round lead time.
			lead = 1
		}
		e.seedPipe(p, lead, f.SupplierPrice(role))
	}

	g.Started = true
	for _, p := range g.Players {
		p.UpdateBalance(g.CurrentDay)
	}
}

// seedPipe pre-populates a tier's inbound pipe with enough staggered
// deliveries to cover its lead time, one arriving per round from day 1 on.
func (e *Engine) seedPipe(p *Player, lead int, unitPrice float64) {
	inc := e.factors.RoundIncrement
	for i := 0; i < ceilDiv(lead, inc); i++ {
		o := &Order{Volume: bootstrapVolume}
		o.Deliveries = append(o.Deliveries, &Delivery{
			Volume:     bootstrapVolume,
			SendDay:    inc*i + 1 - lead,
			ArrivalDay: inc*i + 1,
			Price:      unitPrice * bootstrapVolume,
		})
		p.OutgoingOrders = append(p.OutgoingOrders, o)
	}
}

// sendDeliveries ships every outgoing order that is due, crediting the
// supplying player at send time, and seeds the Farmer with a freshly
// harvested delivery. The harvest arrival jitter is drawn independently of
// the day counter; the day only ever advances by the round increment.
func (e *Engine) sendDeliveries(g *Game) {
	day := g.CurrentDay
	for _, role := range RoleOrder {
		p := g.PlayerAt(role)
		sent := p.SendOutgoingDeliveries(day, e.factors.SupplierPrice(role))
		up := g.Upstream(role)
		if up == nil {
			continue
		}
		for _, d := range sent {
			up.AddPayment(d.Price, day, "Product sold")
		}
	}

	vol := g.Farmer.CurrentOrder.Volume
	harvest := &Order{OrderDay: day, Volume: vol}
	harvest.Deliveries = append(harvest.Deliveries, &Delivery{
		Volume:     vol,
		SendDay:    day,
		ArrivalDay: day + 3 + e.intn(4), // offset uniform in [3,6]
		Price:      e.factors.Prices.Harvester * float64(vol),
	})
	g.Farmer.OutgoingOrders = append(g.Farmer.OutgoingOrders, harvest)
}

// capacityPenalty charges tiers that ordered at or below the guaranteed
// minimum. The penalty rate comes from the option chosen by the tier one
// step upstream of the under-ordering tier. The Farmer has no upstream
// player; its under-order bills the Processor at the flat fallback rate.
func (e *Engine) capacityPenalty(g *Game) {
	f := e.factors
	day := g.CurrentDay
	min := f.MinimumGuaranteedCapacity

	if g.Retailer.CurrentOrder.Volume <= min {
		g.Retailer.AddPenalty(g.Manufacturer.ChosenOption.CapacityPenalty, day)
	}
	if g.Manufacturer.CurrentOrder.Volume <= min {
		g.Manufacturer.AddPenalty(g.Processor.ChosenOption.CapacityPenalty, day)
	}
	if g.Processor.CurrentOrder.Volume <= min {
		g.Processor.AddPenalty(g.Farmer.ChosenOption.CapacityPenalty, day)
	}
	if g.Farmer.CurrentOrder.Volume <= min {
		g.Processor.AddPenalty(f.FallbackCapacityPenalty, day)
	}
}
