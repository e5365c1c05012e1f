package game

// nextOrderNumber numbers a player's new order one past the highest number
// already placed. Bootstrap orders carry number zero, so the first real
// order is 1.
func nextOrderNumber(p *Player) int {
	max := 0
	for _, o := range p.OutgoingOrders {
		if o.Number > max {
			max = o.Number
		}
	}
	return max + 1
}

// ceilDiv is ceiling integer division for non-negative operands.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// propagateOrders pushes every tier's decided order into its own outgoing
// queue and the upstream neighbor's incoming queue, and generates fresh
// end-customer demand for the Retailer. The same Order value is shared
// between the sender's outgoing list and the receiver's incoming list.
func (e *Engine) propagateOrders(g *Game) {
	day := g.CurrentDay

	for _, role := range RoleOrder {
		p := g.PlayerAt(role)
		p.CurrentOrder.OrderDay = day
		p.CurrentOrder.Number = nextOrderNumber(p)
	}

	// End-customer demand, uniform in [5,15].
	demand := &Order{
		Number:   ceilDiv(day, e.factors.RoundIncrement),
		OrderDay: day,
		Volume:   5 + e.intn(11),
	}
	g.Retailer.IncomingOrders = append(g.Retailer.IncomingOrders, demand)

	g.Retailer.OutgoingOrders = append(g.Retailer.OutgoingOrders, g.Retailer.CurrentOrder)
	g.Manufacturer.IncomingOrders = append(g.Manufacturer.IncomingOrders, g.Retailer.CurrentOrder)

	g.Manufacturer.OutgoingOrders = append(g.Manufacturer.OutgoingOrders, g.Manufacturer.CurrentOrder)
	g.Processor.IncomingOrders = append(g.Processor.IncomingOrders, g.Manufacturer.CurrentOrder)

	g.Processor.OutgoingOrders = append(g.Processor.OutgoingOrders, g.Processor.CurrentOrder)
	g.Farmer.IncomingOrders = append(g.Farmer.IncomingOrders, g.Processor.CurrentOrder)

	// The Farmer has no upstream player to log the order against.
	g.Farmer.OutgoingOrders = append(g.Farmer.OutgoingOrders, g.Farmer.CurrentOrder)
}
