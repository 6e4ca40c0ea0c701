package recommend

import "time"

type Config struct {
	// SemanticScale shrinks raw vector similarity so boosts have headroom below 1.0.
	SemanticScale float64

	// vector search budget and result cap
	NumCandidates int
	VectorLimit   int

	// fallback catalog query cap
	FallbackCap int

	SignupWindowMonths int
	SearchLookback     int
	ViewLookback       int

	// how many signup topics, searches and viewed titles go into the profile text
	ProfileTextItems int

	EmbedTimeout time.Duration

	DefaultLimit int
	MaxLimit     int
}

const (
	defaultSemanticScale      = 0.7
	defaultNumCandidates      = 100
	defaultVectorLimit        = 50
	defaultFallbackCap        = 100
	defaultSignupWindowMonths = 6
	defaultSearchLookback     = 5
	defaultViewLookback       = 15
	defaultProfileTextItems   = 5
	defaultEmbedTimeout       = 3 * time.Second
	defaultLimit              = 10
	defaultMaxLimit           = 50
)

func DefaultConfig() Config {
	return Config{
		SemanticScale:      defaultSemanticScale,
		NumCandidates:      defaultNumCandidates,
		VectorLimit:        defaultVectorLimit,
		FallbackCap:        defaultFallbackCap,
		SignupWindowMonths: defaultSignupWindowMonths,
		SearchLookback:     defaultSearchLookback,
		ViewLookback:       defaultViewLookback,
		ProfileTextItems:   defaultProfileTextItems,
		EmbedTimeout:       defaultEmbedTimeout,
		DefaultLimit:       defaultLimit,
		MaxLimit:           defaultMaxLimit,
	}
}

// withDefaults fills zero fields so a partially built Config stays usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SemanticScale <= 0 {
		c.SemanticScale = d.SemanticScale
	}
	if c.NumCandidates <= 0 {
		c.NumCandidates = d.NumCandidates
	}
	if c.VectorLimit <= 0 {
		c.VectorLimit = d.VectorLimit
	}
	if c.FallbackCap <= 0 {
		c.FallbackCap = d.FallbackCap
	}
	if c.SignupWindowMonths <= 0 {
		c.SignupWindowMonths = d.SignupWindowMonths
	}
	if c.SearchLookback <= 0 {
		c.SearchLookback = d.SearchLookback
	}
	if c.ViewLookback <= 0 {
		c.ViewLookback = d.ViewLookback
	}
	if c.ProfileTextItems <= 0 {
		c.ProfileTextItems = d.ProfileTextItems
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = d.EmbedTimeout
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = d.MaxLimit
	}
	return c
}
