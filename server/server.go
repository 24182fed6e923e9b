// Package server exposes the matching engine over HTTP and WebSocket, in
// the shape the teacher's own order-intake server used: a REST endpoint to
// submit and cancel orders, a snapshot endpoint, and two WebSocket streams
// that fan out trades and book updates as they happen.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"limitbook/engine"
	"limitbook/internal/config"
)

// Server wires an *engine.Engine to HTTP and WebSocket transports.
type Server struct {
	engine     *engine.Engine
	cfg        *config.Config
	logger     *zap.Logger
	tradeHub   *hub[engine.Trade]
	bookHub    *hub[engine.OrderbookLevelInfos]
	upgrader   websocket.Upgrader
	authToken  string
	corsOrigin string
}

// New builds a Server around eng using cfg for auth, CORS and price
// rendering, logging through logger.
func New(eng *engine.Engine, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:     eng,
		cfg:        cfg,
		logger:     logger,
		tradeHub:   newHub[engine.Trade](),
		bookHub:    newHub[engine.OrderbookLevelInfos](),
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		authToken:  cfg.AuthToken,
		corsOrigin: cfg.CORSOrigin,
	}
}

// Routes returns the full HTTP handler for the engine.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/orders", s.withTrace(s.withCORS(s.withAuth(http.HandlerFunc(s.handleOrder)))))
	mux.Handle("/orders/cancel", s.withTrace(s.withCORS(s.withAuth(http.HandlerFunc(s.handleCancel)))))
	mux.Handle("/book", s.withTrace(s.withCORS(s.withAuth(http.HandlerFunc(s.handleSnapshot)))))
	mux.Handle("/ws/trades", s.withTrace(s.withCORS(s.withAuth(http.HandlerFunc(s.handleTradeStream)))))
	mux.Handle("/ws/book", s.withTrace(s.withCORS(s.withAuth(http.HandlerFunc(s.handleBookStream)))))
	return mux
}

type traceIDKey struct{}

// withTrace assigns every request a uuid trace id, echoed back on the
// response and attached to every log line the handler emits.
func (s *Server) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.New().String()
		w.Header().Set("X-Trace-Id", traceID)
		next.ServeHTTP(w, r.WithContext(withTraceID(r.Context(), traceID)))
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != s.authToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("missing or invalid token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type orderRequest struct {
	ID       uint64 `json:"id"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Price    int32  `json:"price,omitempty"`
	Quantity uint32 `json:"quantity"`
}

type cancelRequest struct {
	ID uint64 `json:"id"`
}

type orderResponse struct {
	Status string        `json:"status"`
	Trades []publicTrade `json:"trades"`
}

type publicTrade struct {
	BidOrderId uint64          `json:"bidOrderId"`
	BidPrice   decimal.Decimal `json:"bidPrice"`
	AskOrderId uint64          `json:"askOrderId"`
	AskPrice   decimal.Decimal `json:"askPrice"`
	Quantity   uint32          `json:"quantity"`
}

type publicLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity uint32          `json:"quantity"`
}

type snapshotResponse struct {
	Bids []publicLevel `json:"bids"`
	Asks []publicLevel `json:"asks"`
}

type outboundMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
		return
	}

	order, err := buildOrder(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	trades := s.engine.AddOrder(order)
	s.publish(trades)

	s.logger.Info("order accepted",
		zap.String("trace_id", traceIDFrom(r.Context())),
		zap.Uint64("order_id", uint64(order.Id)),
		zap.Int("trades", len(trades)))

	writeJSON(w, http.StatusAccepted, orderResponse{Status: "accepted", Trades: s.toPublicTrades(trades)})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
		return
	}

	s.engine.CancelOrder(engine.OrderId(req.ID))
	s.bookHub.Broadcast(s.engine.GetOrderInfos())
	writeJSON(w, http.StatusOK, orderResponse{Status: "cancelled"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.toSnapshotResponse(s.engine.GetOrderInfos()))
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.tradeHub.Subscribe(32)
	defer s.tradeHub.Unsubscribe(sub)

	for trade := range sub.ch {
		msg := outboundMessage{Type: "trade", Data: s.toPublicTrade(trade)}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *Server) handleBookStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.bookHub.Subscribe(32)
	defer s.bookHub.Unsubscribe(sub)

	for infos := range sub.ch {
		msg := outboundMessage{Type: "book", Data: s.toSnapshotResponse(infos)}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// publish fans out a submission's trades and, if any traded, the resulting
// book state. There is no background matcher to consume from here — the
// engine matches synchronously inside AddOrder, so the handler that
// triggered the fill is the one that broadcasts it.
func (s *Server) publish(trades engine.Trades) {
	if len(trades) == 0 {
		return
	}
	for _, t := range trades {
		s.tradeHub.Broadcast(t)
	}
	s.bookHub.Broadcast(s.engine.GetOrderInfos())
}

func buildOrder(req orderRequest) (*engine.Order, error) {
	if req.Quantity == 0 {
		return nil, errors.New("quantity must be positive")
	}

	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}
	orderType, err := parseOrderType(req.Type)
	if err != nil {
		return nil, err
	}

	id := engine.OrderId(req.ID)
	if orderType == engine.Market {
		return engine.NewMarketOrder(id, side, engine.Quantity(req.Quantity)), nil
	}
	return engine.NewOrder(orderType, id, side, engine.Price(req.Price), engine.Quantity(req.Quantity)), nil
}

func parseSide(value string) (engine.Side, error) {
	switch strings.ToLower(value) {
	case "buy", "bid", "b":
		return engine.Buy, nil
	case "sell", "ask", "s":
		return engine.Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %q", value)
	}
}

func parseOrderType(value string) (engine.OrderType, error) {
	switch strings.ToLower(value) {
	case "goodtillcancel", "gtc":
		return engine.GoodTillCancel, nil
	case "fillandkill", "fak", "ioc":
		return engine.FillAndKill, nil
	case "fillorkill", "fok":
		return engine.FillOrKill, nil
	case "goodforday", "gfd":
		return engine.GoodForDay, nil
	case "market", "mkt":
		return engine.Market, nil
	default:
		return 0, fmt.Errorf("unknown order type %q", value)
	}
}

func (s *Server) tickPrice(p engine.Price) decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Mul(s.cfg.TickValue)
}

func (s *Server) toPublicTrade(t engine.Trade) publicTrade {
	return publicTrade{
		BidOrderId: uint64(t.Bid.OrderId),
		BidPrice:   s.tickPrice(t.Bid.Price),
		AskOrderId: uint64(t.Ask.OrderId),
		AskPrice:   s.tickPrice(t.Ask.Price),
		Quantity:   uint32(t.Bid.Quantity),
	}
}

func (s *Server) toPublicTrades(trades engine.Trades) []publicTrade {
	out := make([]publicTrade, 0, len(trades))
	for _, t := range trades {
		out = append(out, s.toPublicTrade(t))
	}
	return out
}

func (s *Server) toSnapshotResponse(infos engine.OrderbookLevelInfos) snapshotResponse {
	resp := snapshotResponse{
		Bids: make([]publicLevel, 0, len(infos.Bids())),
		Asks: make([]publicLevel, 0, len(infos.Asks())),
	}
	for _, l := range infos.Bids() {
		resp.Bids = append(resp.Bids, publicLevel{Price: s.tickPrice(l.Price), Quantity: uint32(l.Quantity)})
	}
	for _, l := range infos.Asks() {
		resp.Asks = append(resp.Asks, publicLevel{Price: s.tickPrice(l.Price), Quantity: uint32(l.Quantity)})
	}
	return resp
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
