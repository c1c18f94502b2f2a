// Package api - отладочный HTTP-интерфейс слоя кодирования: метрики,
// состояние аккумулятора и кодирование пакетов из YAML-описаний.
package api

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/mmo-wire/internal/logging"
	"github.com/annel0/mmo-wire/internal/middleware"
	"github.com/annel0/mmo-wire/internal/protocol/codec"
	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

// Config содержит зависимости сервера.
type Config struct {
	Addr      string               // адрес, по умолчанию ":2112"
	Namespace string               // префикс HTTP-метрик
	Registry  *prometheus.Registry // отдаётся на /metrics
	Pending   func() int           // размер аккумулятора; nil - эндпоинт отвечает 404
	Localizer packets.Localizer    // переводы для /api/encode/npc; может быть nil
}

// Server - отладочный REST сервер.
type Server struct {
	router *gin.Engine
	srv    *http.Server
	cfg    Config
	logger *logging.Logger
}

// NewServer создаёт сервер; Start запускает прослушивание.
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":2112"
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("packet-inspect"))
	router.Use(middleware.NewRequestLogger().Handler())

	promMw := middleware.NewPrometheusMiddleware(cfg.Namespace, cfg.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, cfg.Registry)

	s := &Server{
		router: router,
		cfg:    cfg,
		logger: logging.GetNetworkLogger(),
	}
	s.srv = &http.Server{Addr: cfg.Addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/pending", s.handlePending)
		api.POST("/encode/item", s.handleEncodeItem)
		api.POST("/encode/inventory", s.handleEncodeInventory)
		api.POST("/encode/npc", s.handleEncodeNpc)
		api.POST("/encode/user", s.handleEncodeUser)
	}
}

// Handler возвращает http.Handler (для тестов и встраивания).
func (s *Server) Handler() http.Handler { return s.router }

// Start запускает HTTP-сервер. Метод неблокирующий.
func (s *Server) Start() {
	go func() {
		s.logger.Info("отладочный HTTP (/metrics, /api) доступен по адресу %s", s.cfg.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ошибка HTTP сервера: %v", err)
		}
	}()
}

// Shutdown останавливает сервер.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// BlockInfo - длина одного блока плана.
type BlockInfo struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
}

// EncodeResponse описывает закодированный пакет.
type EncodeResponse struct {
	Packet     string      `json:"packet"`
	Size       int         `json:"size"`
	Mask       string      `json:"mask,omitempty"`
	Components []string    `json:"components,omitempty"`
	Blocks     []BlockInfo `json:"blocks,omitempty"`
	Hex        string      `json:"hex"`
	Stale      bool        `json:"stale,omitempty"`
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

type inventoryRequest struct {
	Changes []struct {
		Kind string        `yaml:"kind"`
		Item item.Snapshot `yaml:"item"`
	} `yaml:"changes"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePending(c *gin.Context) {
	if s.cfg.Pending == nil {
		s.fail(c, http.StatusNotFound, errors.New("no accumulator attached"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": s.cfg.Pending()})
}

func (s *Server) handleEncodeItem(c *gin.Context) {
	var snap item.Snapshot
	if err := c.ShouldBindYAML(&snap); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	p := item.Plan(&snap)
	if err := p.Err(); err != nil {
		s.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	w := wire.NewWriter()
	item.WritePlanned(w, &snap, p)

	resp := EncodeResponse{Packet: "item", Size: w.Len(), Hex: hex.EncodeToString(w.Bytes())}
	describePlan(&resp, p)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEncodeInventory(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindYAML(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	changes := make([]packets.InventoryChange, 0, len(req.Changes))
	for _, ch := range req.Changes {
		kind, err := packets.ParseChangeKind(ch.Kind)
		if err != nil {
			s.fail(c, http.StatusBadRequest, err)
			return
		}
		changes = append(changes, packets.InventoryChange{Kind: kind, Item: ch.Item})
	}
	s.encode(c, packets.NewInventoryUpdate(changes))
}

func (s *Server) handleEncodeNpc(c *gin.Context) {
	var v packets.NpcView
	if err := c.ShouldBindYAML(&v); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	p := packets.NewNpcInfo(nil, v, c.Query("spawn") == "1")
	if lang := c.Query("lang"); lang != "" && s.cfg.Localizer != nil {
		p.Localize(s.cfg.Localizer, lang)
	}
	s.encode(c, p)
}

func (s *Server) handleEncodeUser(c *gin.Context) {
	var v packets.UserView
	if err := c.ShouldBindYAML(&v); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.encode(c, packets.NewUserInfo(nil, v))
}

func (s *Server) encode(c *gin.Context, p packets.ServerPacket) {
	data, err := packets.Encode(p)
	if err != nil {
		s.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	resp := EncodeResponse{Packet: p.Name(), Size: len(data), Hex: hex.EncodeToString(data), Stale: len(data) == 0}
	if mp, ok := p.(packets.MaskedPacket); ok {
		describePlan(&resp, mp.Plan())
	}
	c.JSON(http.StatusOK, resp)
}

func describePlan(resp *EncodeResponse, p *codec.Plan) {
	resp.Mask = hex.EncodeToString(p.Mask())
	p.Set().Each(func(ct mask.ComponentType) {
		resp.Components = append(resp.Components, ct.Name)
	})
	l := p.Layout()
	for i := 0; i < l.Blocks(); i++ {
		resp.Blocks = append(resp.Blocks, BlockInfo{Name: l.Block(i).Name, Length: p.BlockLength(i)})
	}
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	traceID := c.GetString(middleware.TraceIDKey)
	s.logger.Warn("%s %s: %v (trace=%s)", c.Request.Method, c.Request.URL.Path, err, traceID)
	c.JSON(status, ErrorResponse{Error: err.Error(), TraceID: traceID})
}
