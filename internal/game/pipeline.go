package game

import "fmt"

// ProcessDeliveries resolves every shipment that has matured by the given
// day: the volume becomes inventory and the price is charged to the player.
// With a round increment larger than one day an arrival day can fall between
// two advances, so maturity means ArrivalDay <= day; the Arrived flag keeps
// resolution exactly-once.
func (p *Player) ProcessDeliveries(day int) {
	for _, o := range p.OutgoingOrders {
		for _, d := range o.Deliveries {
			if d.Arrived || d.ArrivalDay > day {
				continue
			}
			d.Arrived = true
			p.Inventory += d.Volume
			p.AddPayment(-d.Price, day, fmt.Sprintf("Delivery for order %d", o.Number))
		}
	}
}

// SendOutgoingDeliveries schedules a shipment for every outgoing order that
// has reached its send day and carries none yet. Arrival is the player's
// lead time after the send day; the price is the supplier's unit price times
// the ordered volume. The scheduled deliveries are returned so the caller
// can credit the supplier.
func (p *Player) SendOutgoingDeliveries(day int, unitPrice float64) []*Delivery {
	sent := []*Delivery{}
	for _, o := range p.OutgoingOrders {
		if len(o.Deliveries) > 0 || o.OrderDay > day {
			continue
		}
		d := &Delivery{
			Volume:     o.Volume,
			SendDay:    day,
			ArrivalDay: day + p.Role.LeadTime,
			Price:      unitPrice * float64(o.Volume),
		}
		o.Deliveries = append(o.Deliveries, d)
		sent = append(sent, d)
	}
	return sent
}
