// Package api is the thin HTTP glue around the round engine: lobby CRUD,
// role binding and the one mutating call that advances a game by a round.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chainsim/beergame/internal/bot"
	"github.com/chainsim/beergame/internal/game"
	"github.com/chainsim/beergame/internal/store"
	"github.com/chainsim/beergame/internal/ws"
)

// Server wires the store, the engine and the broadcast hub into gin routes.
type Server struct {
	store  *store.Store
	engine *game.Engine
	hub    *ws.Hub
}

func NewServer(st *store.Store, e *game.Engine, hub *ws.Hub) *Server {
	return &Server{store: st, engine: e, hub: hub}
}

func (s *Server) Register(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/games", s.createGame)
	api.GET("/games", s.listGames)
	api.GET("/games/:id", s.getGame)
	api.DELETE("/games/:id", s.deleteGame)
	api.POST("/games/:id/players", s.joinGame)
	api.POST("/games/:id/option", s.chooseOption)
	api.POST("/games/:id/orders", s.sendOrders)
	api.GET("/games/:id/suggest", s.suggestOrder)
}

// status maps core errors onto HTTP codes: unknown ids are 404, conflicts
// with the game's current shape are 409, everything else the caller sent
// wrong is 400.
func status(err error) int {
	switch {
	case errors.Is(err, store.ErrGameNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrRoleTaken), errors.Is(err, game.ErrIncompleteRoster):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(status(err), gin.H{"error": err.Error()})
}

func (s *Server) createGame(c *gin.Context) {
	g := s.store.Create()
	log.Info().Str("game", g.ID).Msg("game created")
	c.JSON(http.StatusOK, gin.H{"gameId": g.ID})
}

// snapshot renders a game to JSON while holding its lock, so responses are
// a consistent view even while another request advances the same game.
func (s *Server) snapshot(id string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := s.store.WithGame(id, func(g *game.Game) error {
		var mErr error
		raw, mErr = json.Marshal(g)
		return mErr
	})
	return raw, err
}

func (s *Server) listGames(c *gin.Context) {
	games := make([]json.RawMessage, 0)
	for _, id := range s.store.IDs() {
		raw, err := s.snapshot(id)
		if err != nil {
			continue // deleted since listing
		}
		games = append(games, raw)
	}
	c.JSON(http.StatusOK, games)
}

func (s *Server) getGame(c *gin.Context) {
	raw, err := s.snapshot(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (s *Server) deleteGame(c *gin.Context) {
	s.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

type joinReq struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

func (s *Server) joinGame(c *gin.Context) {
	var req joinReq
	if err := c.BindJSON(&req); err != nil || req.Role == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role and name are required"})
		return
	}
	f := s.engine.Factors()
	role := f.RoleByID(game.RoleID(req.Role))
	if role == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role " + req.Role})
		return
	}

	playerID := uuid.NewString()
	err := s.store.WithGame(c.Param("id"), func(g *game.Game) error {
		p := game.NewPlayer(playerID, req.Name, role, f.OptionFor(role.ID, "Basic"))
		return g.AssignPlayer(role.ID, p)
	})
	if err != nil {
		fail(c, err)
		return
	}
	log.Info().Str("game", c.Param("id")).Str("role", req.Role).Msg("player joined")
	c.JSON(http.StatusOK, gin.H{"playerId": playerID})
}

type optionReq struct {
	PlayerID string `json:"playerId"`
	Option   string `json:"option"`
}

func (s *Server) chooseOption(c *gin.Context) {
	var req optionReq
	if err := c.BindJSON(&req); err != nil || req.PlayerID == "" || req.Option == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId and option are required"})
		return
	}
	err := s.store.WithGame(c.Param("id"), func(g *game.Game) error {
		return g.ChooseOption(s.engine.Factors(), req.PlayerID, req.Option)
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type ordersReq struct {
	Retailer     int `json:"retailer"`
	Manufacturer int `json:"manufacturer"`
	Processor    int `json:"processor"`
	Farmer       int `json:"farmer"`
}

func (s *Server) sendOrders(c *gin.Context) {
	var req ordersReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}
	orders := map[game.RoleID]int{
		game.RoleRetailer:     req.Retailer,
		game.RoleManufacturer: req.Manufacturer,
		game.RoleProcessor:    req.Processor,
		game.RoleFarmer:       req.Farmer,
	}

	// The response and the broadcast are rendered inside the critical
	// section; once the lock is released another request may already be
	// mutating the game.
	var raw json.RawMessage
	var day, round int
	err := s.store.WithGame(c.Param("id"), func(g *game.Game) error {
		if err := s.engine.Advance(g, orders); err != nil {
			return err
		}
		day, round = g.CurrentDay, g.Round
		if s.hub != nil {
			s.hub.BroadcastGame(g)
		}
		var mErr error
		raw, mErr = json.Marshal(g)
		return mErr
	})
	if err != nil {
		fail(c, err)
		return
	}
	log.Info().Str("game", c.Param("id")).Int("day", day).Int("round", round).Msg("round advanced")
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

var errUnknownRole = errors.New("unknown or unfilled role")

func (s *Server) suggestOrder(c *gin.Context) {
	var role game.RoleID
	var vol int
	err := s.store.WithGame(c.Param("id"), func(g *game.Game) error {
		p := g.PlayerAt(game.RoleID(c.Query("role")))
		if p == nil {
			return errUnknownRole
		}
		role = p.Role.ID
		vol = bot.SuggestOrder(s.engine.Factors(), p, bot.DefaultWindow)
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role, "volume": vol})
}
