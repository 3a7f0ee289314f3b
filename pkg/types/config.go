package types

import "time"

// HTTPConfig holds shared HTTP settings used by tools that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "insight-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig holds settings for the retail fact store.
type StoreConfig struct {
	// Path is the SQLite database file (e.g. "data/retail.db").
	Path string `json:"path" yaml:"path"`
}

// MarketConfig holds settings for the market search tool.
type MarketConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the base URL of the headline search API.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// APIKey is an optional key for higher rate limits, loaded from
	// .secrets/market-api-key when not set here.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries bounds the 429 retry loop (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// WorkerConfig holds the execution limits applied to every worker.
type WorkerConfig struct {
	// Timeout bounds one worker's whole execution, tool calls included
	// (default 30s). A worker that exceeds it is treated as failed.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// ToolTimeout bounds a single tool invocation (default 10s).
	ToolTimeout time.Duration `json:"tool_timeout" yaml:"tool_timeout"`

	// MaxToolCalls bounds the tool-call loop (default 8). A worker that
	// neither finishes nor fails within the budget is failed.
	MaxToolCalls int `json:"max_tool_calls" yaml:"max_tool_calls"`
}

// FailurePolicy selects how a fan-out stage reacts to a worker failure.
type FailurePolicy string

const (
	// FailFast cancels the remaining workers on the first failure and
	// fails the stage. The default.
	FailFast FailurePolicy = "fail-fast"

	// BestEffort lets every worker run to completion and succeeds as long
	// as at least one of them did.
	BestEffort FailurePolicy = "best-effort"
)

// PipelineConfig groups all settings for a pipeline run.
type PipelineConfig struct {
	Store  StoreConfig  `json:"store" yaml:"store"`
	Market MarketConfig `json:"market" yaml:"market"`
	Worker WorkerConfig `json:"worker" yaml:"worker"`

	// Policy is fail-fast or best-effort.
	Policy FailurePolicy `json:"policy" yaml:"policy"`
}

// Defaults applied by WithDefaults.
const (
	DefaultWorkerTimeout = 30 * time.Second
	DefaultToolTimeout   = 10 * time.Second
	DefaultMaxToolCalls  = 8
	DefaultHTTPTimeout   = 15 * time.Second
	DefaultUserAgent     = "insight-engine/0.1"
	DefaultMaxRetries    = 3
)

// WithDefaults returns a copy of the config with zero values replaced by the
// documented defaults. The policy defaults to fail-fast.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	if c.Worker.Timeout <= 0 {
		c.Worker.Timeout = DefaultWorkerTimeout
	}
	if c.Worker.ToolTimeout <= 0 {
		c.Worker.ToolTimeout = DefaultToolTimeout
	}
	if c.Worker.MaxToolCalls <= 0 {
		c.Worker.MaxToolCalls = DefaultMaxToolCalls
	}
	if c.Market.Timeout <= 0 {
		c.Market.Timeout = DefaultHTTPTimeout
	}
	if c.Market.UserAgent == "" {
		c.Market.UserAgent = DefaultUserAgent
	}
	if c.Market.MaxRetries <= 0 {
		c.Market.MaxRetries = DefaultMaxRetries
	}
	if c.Policy == "" {
		c.Policy = FailFast
	}
	return c
}
