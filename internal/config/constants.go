package config

import (
	"time"

	"bikepulse/pkg/contracts"
)

// Application constants
const (
	// Application Info
	AppName     = "BikePulse"
	AppVersion  = contracts.Version
	ServiceName = "bikepulse"

	// Server
	DefaultPort           = 8080
	DefaultRequestTimeout = 60 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// File Paths (relative to the base directory)
	DefaultDataDir     = "data"
	DefaultExportsDir  = "data/exports"
	DefaultLogsDir     = "logs"
	DefaultLogFile     = "logs/app.log"
	DefaultDatasetFile = "data/day.csv"

	// Dashboard
	DefaultMovingAverageWindow = 7
	DefaultTopN                = 10
	DefaultClusters            = 3
	MinClusters                = 2
	MaxClusters                = 6
	DefaultSeed                = 42
	DefaultNInit               = 10
	DefaultMaxIter             = 300

	// WebSocket
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketMaxMessageSize  = 64 * 1024

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
