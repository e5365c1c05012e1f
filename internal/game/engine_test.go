package game

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultFactors(), rand.New(rand.NewSource(1)))
}

func newTestGame(t *testing.T, e *Engine) *Game {
	t.Helper()
	g := NewGame("123456")
	for _, role := range RoleOrder {
		r := e.Factors().RoleByID(role)
		opt := e.Factors().OptionFor(role, "Basic")
		p := NewPlayer(string(role)+"-id", string(role), r, opt)
		if err := g.AssignPlayer(role, p); err != nil {
			t.Fatalf("should be able to assign %s: %v", role, err)
		}
	}
	return g
}

// steadyOrders returns decided volumes above the guaranteed minimum so no
// penalties fire unless a test wants them to.
func steadyOrders(vol int) map[RoleID]int {
	return map[RoleID]int{
		RoleRetailer:     vol,
		RoleManufacturer: vol,
		RoleProcessor:    vol,
		RoleFarmer:       vol,
	}
}

func TestAdvanceRequiresFullRoster(t *testing.T) {
	e := newTestEngine(t)
	g := NewGame("123456")
	r := e.Factors().RoleByID(RoleRetailer)
	opt := e.Factors().OptionFor(RoleRetailer, "Basic")
	if err := g.AssignPlayer(RoleRetailer, NewPlayer("p1", "solo", r, opt)); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	err := e.Advance(g, steadyOrders(12))
	if !errors.Is(err, ErrIncompleteRoster) {
		t.Fatalf("expected ErrIncompleteRoster, got %v", err)
	}
	if g.Started {
		t.Fatal("a rejected advance must not start the game")
	}
	if g.CurrentDay != 1 {
		t.Fatalf("a rejected advance must not move the day, got %d", g.CurrentDay)
	}
}

func TestFirstAdvanceBootstrapsChain(t *testing.T) {
	e := newTestEngine(t)
	g := newTestGame(t, e)
	f := e.Factors()

	if err := e.Advance(g, nil); err != nil {
		t.Fatalf("first advance should succeed: %v", err)
	}
	if !g.Started {
		t.Fatal("game should be started after the first advance")
	}
	if g.CurrentDay != 1 {
		t.Fatalf("bootstrap must leave the day at 1, got %d", g.CurrentDay)
	}

	want := f.InitialCapital - f.SetupCost
	for _, p := range g.Players {
		if p.Balance != want {
			t.Fatalf("%s balance: expected %.0f, got %.0f", p.Role.ID, want, p.Balance)
		}
		if len(p.Payments) != 1 || p.Payments[0].Amount != -f.SetupCost {
			t.Fatalf("%s should carry exactly one setup payment of %.0f", p.Role.ID, -f.SetupCost)
		}
		if p.Payments[0].DueDay != 1 || !p.Payments[0].Applied {
			t.Fatalf("%s setup payment should be due and settled on day 1", p.Role.ID)
		}
	}

	// Seed orders: one per link of the chain plus the end-customer order.
	if len(g.Retailer.IncomingOrders) != 1 {
		t.Fatalf("retailer should hold the seed customer order, got %d", len(g.Retailer.IncomingOrders))
	}
	wantDay := 1 - f.RoundIncrement
	if g.Retailer.IncomingOrders[0].OrderDay != wantDay {
		t.Fatalf("seed order day: expected %d, got %d", wantDay, g.Retailer.IncomingOrders[0].OrderDay)
	}
	if len(g.Manufacturer.IncomingOrders) != 1 || len(g.Processor.IncomingOrders) != 1 || len(g.Farmer.IncomingOrders) != 1 {
		t.Fatal("every upstream tier should hold exactly one seed order")
	}

	// Pipe depth per tier: ceil(leadTime/roundIncrement) pre-seeded
	// deliveries, plus the one seed chain order without deliveries. The
	// Farmer's pipe uses a one-round harvester lead time.
	cases := []struct {
		p     *Player
		lead  int
		chain int // seed chain orders without deliveries
	}{
		{g.Retailer, g.Retailer.Role.LeadTime, 1},
		{g.Manufacturer, g.Manufacturer.Role.LeadTime, 1},
		{g.Processor, g.Processor.Role.LeadTime, 1},
		{g.Farmer, 1, 0},
	}
	for _, tc := range cases {
		depth := ceilDiv(tc.lead, f.RoundIncrement)
		if len(tc.p.OutgoingOrders) != depth+tc.chain {
			t.Fatalf("%s outgoing orders: expected %d, got %d", tc.p.Role.ID, depth+tc.chain, len(tc.p.OutgoingOrders))
		}
		seen := 0
		for _, o := range tc.p.OutgoingOrders {
			for _, d := range o.Deliveries {
				wantArrival := f.RoundIncrement*seen + 1
				if d.ArrivalDay != wantArrival {
					t.Fatalf("%s pipe delivery %d: expected arrival %d, got %d", tc.p.Role.ID, seen, wantArrival, d.ArrivalDay)
				}
				if d.SendDay != wantArrival-tc.lead {
					t.Fatalf("%s pipe delivery %d: expected send day %d, got %d", tc.p.Role.ID, seen, wantArrival-tc.lead, d.SendDay)
				}
				seen++
			}
		}
		if seen != depth {
			t.Fatalf("%s pipe: expected %d deliveries, got %d", tc.p.Role.ID, depth, seen)
		}
	}
}

func TestDayAdvancesByRoundIncrement(t *testing.T) {
	e := newTestEngine(t)
	g := newTestGame(t, e)
	f := e.Factors()

	if err := e.Advance(g, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := e.Advance(g, steadyOrders(12)); err != nil {
			t.Fatalf("round %d failed: %v", i, err)
		}
		want := 1 + i*f.RoundIncrement
		if g.CurrentDay != want {
			t.Fatalf("after round %d: expected day %d, got %d", i, want, g.CurrentDay)
		}
	}
	if g.Round != 4 {
		t.Fatalf("expected 4 rounds played, got %d", g.Round)
	}
}

func TestInvalidOrderVolumeRejectedWithoutMutation(t *testing.T) {
	e := newTestEngine(t)
	g := newTestGame(t, e)
	if err := e.Advance(g, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	before := len(g.Retailer.OutgoingOrders)
	orders := steadyOrders(12)
	orders[RoleProcessor] = -3
	err := e.Advance(g, orders)
	if !errors.Is(err, ErrInvalidOrderVolume) {
		t.Fatalf("expected ErrInvalidOrderVolume, got %v", err)
	}
	if g.CurrentDay != 1 {
		t.Fatalf("rejected advance must not move the day, got %d", g.CurrentDay)
	}
	if len(g.Retailer.OutgoingOrders) != before {
		t.Fatal("rejected advance must not touch order queues")
	}

	// A missing role counts as invalid too.
	delete(orders, RoleProcessor)
	if err := e.Advance(g, orders); !errors.Is(err, ErrInvalidOrderVolume) {
		t.Fatalf("expected ErrInvalidOrderVolume for missing role, got %v", err)
	}
}

func TestOrderNumbersIncreaseByOne(t *testing.T) {
	e := newTestEngine(t)
	g := newTestGame(t, e)
	if err := e.Advance(g, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := e.Advance(g, steadyOrders(12)); err != nil {
			t.Fatalf("round failed: %v", err)
		}
	}

	for _, p := range []*Player{g.Retailer, g.Manufacturer, g.Processor} {
		var numbers []int
		for _, o := range p.OutgoingOrders {
			if o.Number > 0 {
				numbers = append(numbers, o.Number)
			}
		}
		if len(numbers) != 3 {
			t.Fatalf("%s: expected 3 numbered orders, got %d", p.Role.ID, len(numbers))
		}
		for i, n := range numbers {
			if n != i+1 {
				t.Fatalf("%s: expected order number %d, got %d", p.Role.ID, i+1, n)
			}
		}
	}
}

func TestDemandAndHarvestJitterRanges(t *testing.T) {
	e := newTestEngine(t)
	g := newTestGame(t, e)
	if err := e.Advance(g, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	for i := 0; i < 30; i++ {
		if err := e.Advance(g, steadyOrders(12)); err != nil {
			t.Fatalf("round failed: %v", err)
		}
	}

	// Skip the seed order; every generated customer order is in [5,15].
	for _, o := range g.Retailer.IncomingOrders[1:] {
		if o.Volume < 5 || o.Volume > 15 {
			t.Fatalf("customer demand out of range: %d", o.Volume)
		}
	}

	// Every synthetic harvest delivery arrives 3 to 6 days after send.
	// Harvest orders are unnumbered; the farmer's own propagated orders
	// ship with its regular lead time and are skipped here.
	harvests := 0
	for _, o := range g.Farmer.OutgoingOrders {
		if o.Number != 0 || o.OrderDay < 1 {
			continue
		}
		for _, d := range o.Deliveries {
			offset := d.ArrivalDay - d.SendDay
			if offset < 3 || offset > 6 {
				t.Fatalf("harvest arrival offset out of range: %d", offset)
			}
			harvests++
		}
	}
	if harvests == 0 {
		t.Fatal("expected synthetic harvest deliveries")
	}
}

func TestConcurrentGamesShareOneEngine(t *testing.T) {
	e := newTestEngine(t)
	f := e.Factors()

	// Different games are independent and may advance in parallel through
	// the same engine; only each game's own advances are serialized.
	games := make([]*Game, 4)
	for i := range games {
		games[i] = newTestGame(t, e)
		if err := e.Advance(games[i], nil); err != nil {
			t.Fatalf("bootstrap failed: %v", err)
		}
	}

	const rounds = 25
	var wg sync.WaitGroup
	errs := make([]error, len(games))
	for i, g := range games {
		wg.Add(1)
		go func(i int, g *Game) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				if err := e.Advance(g, steadyOrders(12)); err != nil {
					errs[i] = err
					return
				}
			}
		}(i, g)
	}
	wg.Wait()

	for i, g := range games {
		if errs[i] != nil {
			t.Fatalf("game %d failed: %v", i, errs[i])
		}
		if want := 1 + rounds*f.RoundIncrement; g.CurrentDay != want {
			t.Fatalf("game %d: expected day %d, got %d", i, want, g.CurrentDay)
		}
	}
}

func hasPenalty(p *Player) (float64, bool) {
	for _, pay := range p.Payments {
		if pay.Topic == "Capacity penalty" {
			return pay.Amount, true
		}
	}
	return 0, false
}

func TestCapacityPenaltyBoundary(t *testing.T) {
	e := newTestEngine(t)
	f := e.Factors()

	// Ordering exactly the guaranteed minimum is penalized, one above is not.
	g := newTestGame(t, e)
	if err := e.Advance(g, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	orders := steadyOrders(f.MinimumGuaranteedCapacity + 1)
	orders[RoleRetailer] = f.MinimumGuaranteedCapacity
	if err := e.Advance(g, orders); err != nil {
		t.Fatalf("round failed: %v", err)
	}
	amount, ok := hasPenalty(g.Retailer)
	if !ok {
		t.Fatal("retailer at the minimum should be penalized")
	}
	// The rate is taken from the upstream tier's chosen option.
	if want := -g.Manufacturer.ChosenOption.CapacityPenalty; amount != want {
		t.Fatalf("expected penalty %.0f, got %.0f", want, amount)
	}

	g2 := newTestGame(t, e)
	if err := e.Advance(g2, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := e.Advance(g2, steadyOrders(f.MinimumGuaranteedCapacity+1)); err != nil {
		t.Fatalf("round failed: %v", err)
	}
	for _, p := range g2.Players {
		if _, ok := hasPenalty(p); ok {
			t.Fatalf("%s ordered above the minimum and must not be penalized", p.Role.ID)
		}
	}
}

func TestFarmerUnderOrderBillsProcessor(t *testing.T) {
	e := newTestEngine(t)
	f := e.Factors()
	g := newTestGame(t, e)
	if err := e.Advance(g, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	orders := steadyOrders(f.MinimumGuaranteedCapacity + 1)
	orders[RoleFarmer] = f.MinimumGuaranteedCapacity
	if err := e.Advance(g, orders); err != nil {
		t.Fatalf("round failed: %v", err)
	}

	amount, ok := hasPenalty(g.Processor)
	if !ok {
		t.Fatal("the farmer's under-order is billed to the processor")
	}
	if want := -f.FallbackCapacityPenalty; amount != want {
		t.Fatalf("expected fallback penalty %.0f, got %.0f", want, amount)
	}
	if _, ok := hasPenalty(g.Farmer); ok {
		t.Fatal("the farmer itself is not billed")
	}
}

func TestHoldingCostChargedOnInventory(t *testing.T) {
	e := newTestEngine(t)
	f := e.Factors()
	g := newTestGame(t, e)
	if err := e.Advance(g, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	// Round one resolves the pipe deliveries arriving on day 1, so every
	// tier is holding goods when the holding charge is computed.
	if err := e.Advance(g, steadyOrders(12)); err != nil {
		t.Fatalf("round failed: %v", err)
	}

	for _, p := range g.Players {
		if p.Inventory <= 0 {
			t.Fatalf("%s should hold inventory after round one, got %d", p.Role.ID, p.Inventory)
		}
		found := false
		for _, pay := range p.Payments {
			if pay.Topic == "Holding cost" {
				found = true
				if pay.Amount != -float64(p.Inventory)*f.HoldingCostPerUnit {
					t.Fatalf("%s holding cost %.0f does not match inventory %d", p.Role.ID, pay.Amount, p.Inventory)
				}
				if !pay.Applied {
					t.Fatalf("%s holding cost should settle in the same round", p.Role.ID)
				}
			}
		}
		if !found {
			t.Fatalf("%s should be charged a holding cost", p.Role.ID)
		}
	}
}

func TestSupplierCreditedAtSend(t *testing.T) {
	e := newTestEngine(t)
	f := e.Factors()
	g := newTestGame(t, e)
	if err := e.Advance(g, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	// Round one ships the seed chain orders (volume 5) placed before day 1.
	if err := e.Advance(g, steadyOrders(12)); err != nil {
		t.Fatalf("round failed: %v", err)
	}

	want := f.Prices.Manufacturer * 5
	found := false
	for _, pay := range g.Manufacturer.Payments {
		if pay.Topic == "Product sold" && pay.Amount == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("manufacturer should be credited %.0f for the retailer's shipment", want)
	}
}
