package game

import (
	"errors"
	"fmt"
)

var (
	ErrRoleMismatch       = errors.New("player role does not match the target slot")
	ErrRoleTaken          = errors.New("role slot is already filled")
	ErrIncompleteRoster   = errors.New("game is missing one or more roles")
	ErrInvalidOrderVolume = errors.New("order volume must be a non-negative integer")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrUnknownOption      = errors.New("no such option for this role")
)

// Game is the aggregate state of one supply chain. The core never locks it;
// callers must serialize mutating calls per game (see the store package).
type Game struct {
	ID         string `json:"id"`
	CurrentDay int    `json:"currentDay"`
	Round      int    `json:"round"`
	Started    bool   `json:"started"`

	Retailer     *Player `json:"retailer"`
	Manufacturer *Player `json:"manufacturer"`
	Processor    *Player `json:"processor"`
	Farmer       *Player `json:"farmer"`

	// Players preserves join order for iteration.
	Players []*Player `json:"players"`
}

// NewGame creates an empty game on day 1.
func NewGame(id string) *Game {
	return &Game{
		ID:         id,
		CurrentDay: 1,
		Players:    []*Player{},
	}
}

// AssignPlayer binds a player to a role slot. The player's role tag must
// match the slot, and a filled slot is never overwritten.
func (g *Game) AssignPlayer(slot RoleID, p *Player) error {
	if p == nil || p.Role == nil || p.Role.ID != slot {
		return fmt.Errorf("%w: slot %s", ErrRoleMismatch, slot)
	}
	if g.PlayerAt(slot) != nil {
		return fmt.Errorf("%w: %s", ErrRoleTaken, slot)
	}
	switch slot {
	case RoleRetailer:
		g.Retailer = p
	case RoleManufacturer:
		g.Manufacturer = p
	case RoleProcessor:
		g.Processor = p
	case RoleFarmer:
		g.Farmer = p
	default:
		return fmt.Errorf("%w: unknown slot %s", ErrRoleMismatch, slot)
	}
	g.Players = append(g.Players, p)
	return nil
}

// PlayerAt returns the occupant of a role slot, or nil.
func (g *Game) PlayerAt(slot RoleID) *Player {
	switch slot {
	case RoleRetailer:
		return g.Retailer
	case RoleManufacturer:
		return g.Manufacturer
	case RoleProcessor:
		return g.Processor
	case RoleFarmer:
		return g.Farmer
	}
	return nil
}

// PlayerByID finds a player anywhere in the roster.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Upstream returns the tier a role orders from, or nil for the Farmer whose
// supplier is the synthetic harvester.
func (g *Game) Upstream(role RoleID) *Player {
	switch role {
	case RoleRetailer:
		return g.Manufacturer
	case RoleManufacturer:
		return g.Processor
	case RoleProcessor:
		return g.Farmer
	}
	return nil
}

// requireRoster verifies every slot is occupied before the engine touches
// the state.
func (g *Game) requireRoster() error {
	for _, role := range RoleOrder {
		if g.PlayerAt(role) == nil {
			return fmt.Errorf("%w: %s never joined", ErrIncompleteRoster, role)
		}
	}
	return nil
}

// ChooseOption switches a player's contract option and books its one-time
// startup cost, due at the start of round 9.
func (g *Game) ChooseOption(f *Factors, playerID, optionName string) error {
	p := g.PlayerByID(playerID)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	opt := f.OptionFor(p.Role.ID, optionName)
	if opt == nil {
		return fmt.Errorf("%w: %s/%s", ErrUnknownOption, p.Role.ID, optionName)
	}
	p.ChosenOption = opt
	p.AddPayment(-opt.CostOfStartup, f.RoundIncrement*8+1, "Setup "+opt.Name)
	return nil
}
