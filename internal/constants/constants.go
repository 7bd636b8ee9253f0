package constants

import "time"

// DefaultReactions are applied to the originating message around command
// execution when the command does not declare its own set.
var DefaultReactions = struct {
	Before string
	After  string
	Error  string
}{
	Before: "⏳",
	After:  "✅",
	Error:  "❌",
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
}

var CacheTTL = struct {
	Weather   time.Duration
	Geocoding time.Duration
}{
	Weather:   10 * time.Minute,
	Geocoding: 24 * time.Hour,
}

var DownloadConfig = struct {
	PageTimeout     time.Duration
	FileTimeout     time.Duration
	MaxParallel     int
	DefaultSweepAge time.Duration
}{
	PageTimeout:     15 * time.Second,
	FileTimeout:     60 * time.Second,
	MaxParallel:     3,
	DefaultSweepAge: 7 * 24 * time.Hour,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

// PostgresPool sizes the report-sink connection pool. Dispatch telemetry is a
// low-rate write stream, not request traffic.
var PostgresPool = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}{
	MaxOpenConns:    8,
	MaxIdleConns:    2,
	ConnMaxLifetime: 30 * time.Minute,
	PingTimeout:     5 * time.Second,
}

var AIInputLimits = struct {
	MaxPromptLength int
}{
	MaxPromptLength: 500,
}

// DownloadPlatforms maps recognized hostnames to platform tags. Hostnames are
// matched against the URL host with and without a leading "www.".
var DownloadPlatforms = map[string]string{
	"youtube.com":    "youtube",
	"youtu.be":       "youtube",
	"tiktok.com":     "tiktok",
	"instagram.com":  "instagram",
	"facebook.com":   "facebook",
	"fb.watch":       "facebook",
	"twitter.com":    "twitter",
	"x.com":          "twitter",
	"twitch.tv":      "twitch",
	"snapchat.com":   "snapchat",
	"reddit.com":     "reddit",
	"vimeo.com":      "vimeo",
	"streamable.com": "streamable",
	"pinterest.com":  "pinterest",
	"linkedin.com":   "linkedin",
	"bilibili.com":   "bilibili",
}
