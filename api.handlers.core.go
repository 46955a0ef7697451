package main

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	mu      sync.RWMutex
	message string
	started time.Time
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger      *zap.Logger
	config      *Config
	stats       *Statistics
	mode        *Maintenance
	clock       Clocker
	idsHandler  UIDHandler
	validator   *BookValidator
	bookService BookServiceProvider
	mirror      BookMirror
}

// NewAPIHandler provides a new instance of APIHandler. The mirror is
// optional and only served by the ops routes when set.
func NewAPIHandler(logger *zap.Logger, config *Config, stats *Statistics, clock Clocker, idsHandler UIDHandler, bs BookServiceProvider, mirror BookMirror) *APIHandler {
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	if config == nil {
		config = &Config{}
	}
	return &APIHandler{
		logger:      logger,
		config:      config,
		stats:       stats,
		mode:        &Maintenance{},
		clock:       clock,
		idsHandler:  idsHandler,
		validator:   NewBookValidator(),
		bookService: bs,
		mirror:      mirror,
	}
}
