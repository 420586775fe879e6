package config

import "time"

// File represents the structure of the .sightscan configuration file.
// Every field is optional. Unset fields leave the Config value unchanged.
//
// Design decision: Booleans whose default is true are pointers so that an
// explicit "false" can be told apart from an omitted key.
type File struct {
	// Seeds are appended after seeds given on the command line.
	Seeds []string `yaml:"seeds,omitempty"`

	// Outputs replace the default output file.
	Outputs []string `yaml:"outputs,omitempty"`

	Renderer        string        `yaml:"renderer,omitempty"`
	Headless        *bool         `yaml:"headless,omitempty"`
	ChromePath      string        `yaml:"chrome_path,omitempty"`
	UserAgent       string        `yaml:"user_agent,omitempty"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout,omitempty"`
	ReadyTimeout    time.Duration `yaml:"ready_timeout,omitempty"`
	SettleDelay     time.Duration `yaml:"settle_delay,omitempty"`
	MaxBodySize     int64         `yaml:"max_body_size,omitempty"`

	Normalization  string   `yaml:"normalization,omitempty"`
	MaxPathDepth   *int     `yaml:"max_path_depth,omitempty"`
	MaxPages       int      `yaml:"max_pages,omitempty"`
	IgnorePatterns []string `yaml:"ignore_patterns,omitempty"`

	EmbedSignature string `yaml:"embed_signature,omitempty"`
	APIMarker      string `yaml:"api_marker,omitempty"`

	// History enables the history database.
	History *bool  `yaml:"history,omitempty"`
	DBDir   string `yaml:"db_dir,omitempty"`
}

// Apply copies every set field of f into c.
func (f *File) Apply(c *Config) {
	c.Seeds = append(c.Seeds, f.Seeds...)
	if len(f.Outputs) > 0 {
		c.Outputs = f.Outputs
	}

	if f.Renderer != "" {
		c.Renderer = f.Renderer
	}
	if f.Headless != nil {
		c.Headless = *f.Headless
	}
	if f.ChromePath != "" {
		c.ChromePath = f.ChromePath
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.PageLoadTimeout != 0 {
		c.PageLoadTimeout = f.PageLoadTimeout
	}
	if f.ReadyTimeout != 0 {
		c.ReadyTimeout = f.ReadyTimeout
	}
	if f.SettleDelay != 0 {
		c.SettleDelay = f.SettleDelay
	}
	if f.MaxBodySize != 0 {
		c.MaxBodySize = f.MaxBodySize
	}

	if f.Normalization != "" {
		c.Normalization = f.Normalization
	}
	if f.MaxPathDepth != nil {
		c.MaxPathDepth = *f.MaxPathDepth
	}
	if f.MaxPages != 0 {
		c.MaxPages = f.MaxPages
	}
	if len(f.IgnorePatterns) > 0 {
		c.IgnorePatterns = f.IgnorePatterns
	}

	if f.EmbedSignature != "" {
		c.EmbedSignature = f.EmbedSignature
	}
	if f.APIMarker != "" {
		c.APIMarker = f.APIMarker
	}

	if f.History != nil {
		c.SaveHistory = *f.History
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}
