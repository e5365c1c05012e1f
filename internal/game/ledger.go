package game

import "github.com/google/uuid"

// AddPayment books a signed amount against the player, due on the given day.
func (p *Player) AddPayment(amount float64, dueDay int, topic string) {
	p.Payments = append(p.Payments, &Payment{
		ID:       uuid.NewString(),
		Amount:   amount,
		DueDay:   dueDay,
		ToPlayer: amount > 0,
		PlayerID: p.ID,
		Topic:    topic,
	})
}

// AddPenalty books a capacity penalty due immediately.
func (p *Player) AddPenalty(amount float64, day int) {
	p.AddPayment(-amount, day, "Capacity penalty")
}

// SetHoldingCost charges the per-round cost of carrying unconsumed inventory.
func (p *Player) SetHoldingCost(day int, perUnit float64) {
	if p.Inventory <= 0 {
		return
	}
	p.AddPayment(-float64(p.Inventory)*perUnit, day, "Holding cost")
}

// UpdateBalance settles every pending payment whose due day has been
// reached. Each payment is applied exactly once.
func (p *Player) UpdateBalance(day int) {
	for _, pay := range p.Payments {
		if pay.Applied || pay.DueDay > day {
			continue
		}
		pay.Applied = true
		p.Balance += pay.Amount
	}
}

// PendingPayments returns the not-yet-settled payments, oldest first.
func (p *Player) PendingPayments() []*Payment {
	out := []*Payment{}
	for _, pay := range p.Payments {
		if !pay.Applied {
			out = append(out, pay)
		}
	}
	return out
}
