package game

// RoleID identifies one tier of the supply chain.
type RoleID string

const (
	RoleRetailer     RoleID = "Retailer"
	RoleManufacturer RoleID = "Manufacturer"
	RoleProcessor    RoleID = "Processor"
	RoleFarmer       RoleID = "Farmer"
)

// RoleOrder lists the tiers from the most-downstream to the most-upstream.
// Chain iteration always uses this order.
var RoleOrder = []RoleID{RoleRetailer, RoleManufacturer, RoleProcessor, RoleFarmer}

// Role is static per-tier metadata. LeadTime is the shipping delay in days
// for goods this tier has ordered from its supplier.
type Role struct {
	ID       RoleID `json:"id" yaml:"id"`
	LeadTime int    `json:"leadTime" yaml:"lead_time"`
}

// Option is a per-tier contract choice. CostOfStartup is charged once when
// the option is chosen; CapacityPenalty is the per-round amount billed to the
// downstream neighbor when it orders at or below the guaranteed minimum.
type Option struct {
	Name            string  `json:"name" yaml:"name"`
	Role            RoleID  `json:"role" yaml:"role"`
	CostOfStartup   float64 `json:"costOfStartup" yaml:"cost_of_startup"`
	CapacityPenalty float64 `json:"capacityPenalty" yaml:"capacity_penalty"`
}

// Order is a request for goods placed by one tier to the tier upstream.
// Number is monotonic per player; Deliveries holds the shipments that will
// satisfy it (exactly one per order in steady state).
type Order struct {
	Number     int         `json:"number"`
	OrderDay   int         `json:"orderDay"`
	Volume     int         `json:"volume"`
	Deliveries []*Delivery `json:"deliveries"`
}

// Delivery is a scheduled shipment. Once Arrived is set the delivery has
// been converted into inventory and must never be counted again.
type Delivery struct {
	Volume     int     `json:"volume"`
	SendDay    int     `json:"sendDay"`
	ArrivalDay int     `json:"arrivalDay"`
	Price      float64 `json:"price"`
	Arrived    bool    `json:"arrived"`
}

// Payment is a scheduled balance mutation. Amount is signed: negative means
// the player pays out. Applied marks it as settled into the balance.
type Payment struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	DueDay   int     `json:"dueDay"`
	ToPlayer bool    `json:"toPlayer"`
	PlayerID string  `json:"playerId"`
	Topic    string  `json:"topic"`
	Applied  bool    `json:"applied"`
}

// Player is one occupied tier slot.
type Player struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Role           *Role      `json:"role"`
	ChosenOption   *Option    `json:"chosenOption"`
	Balance        float64    `json:"balance"`
	Inventory      int        `json:"inventory"`
	CurrentOrder   *Order     `json:"currentOrder"`
	IncomingOrders []*Order   `json:"incomingOrders"`
	OutgoingOrders []*Order   `json:"outgoingOrders"`
	Payments       []*Payment `json:"payments"`
}

// NewPlayer creates a player bound to a role and its default option.
func NewPlayer(id, name string, role *Role, opt *Option) *Player {
	return &Player{
		ID:             id,
		Name:           name,
		Role:           role,
		ChosenOption:   opt,
		CurrentOrder:   &Order{},
		IncomingOrders: []*Order{},
		OutgoingOrders: []*Order{},
		Payments:       []*Payment{},
	}
}
