package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Bluesky configuration
	BskyIdentifier string `long:"bsky-identifier" env:"BSKY_IDENTIFIER" description:"Bluesky account identifier (handle or email, required)" required:"true"`
	BskyPassword   string `long:"bsky-password" env:"BSKY_PASSWORD" description:"Bluesky app password (required)" required:"true"`
	PDSHost        string `long:"pds-host" env:"PDS_HOST" default:"https://bsky.social" description:"Base URL of the PDS handling XRPC requests"`

	// Cursor store configuration
	FeedsTable string `long:"feeds-table" env:"FEEDS_TABLE" default:"skypost-feeds" description:"DynamoDB table holding feed subscriptions and cursors"`

	// Application configuration
	FetchTimeout int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"HTTP timeout for feed/page/image fetches in seconds"`
	RunInterval  int `long:"run-interval" env:"RUN_INTERVAL" default:"0" description:"Interval between sync runs in seconds (0 runs once and exits)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"skypost/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		BskyIdentifier: raw.BskyIdentifier,
		BskyPassword:   raw.BskyPassword,
		PDSHost:        raw.PDSHost,
		FeedsTable:     raw.FeedsTable,
		FetchTimeout:   raw.FetchTimeout,
		RunInterval:    raw.RunInterval,
		UserAgent:      raw.UserAgent,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
