package astc

// EncodeQuality controls encoder search effort.
type EncodeQuality uint8

const (
	EncodeFastest EncodeQuality = iota
	EncodeFast
	EncodeMedium
	EncodeThorough
	EncodeVeryThorough
	EncodeExhaustive
)

// Config carries the compressor settings for a context.
type Config struct {
	Profile Profile

	BlockX int
	BlockY int
	BlockZ int

	// Per-channel error weights.
	CwR float32
	CwG float32
	CwB float32
	CwA float32

	// AlphaScaleRGB scales the RGB error significance by the texel alpha.
	AlphaScaleRGB bool

	// RGBM enables shared-multiplier mode: encodings whose M channel
	// quantizes to zero are rejected.
	RGBM      bool
	RGBMScale float32

	// TuneBlockModeLimit is the block mode percentile cutoff in [0, 1].
	TuneBlockModeLimit float32

	// TunePartitionCountLimit bounds the partition counts tried (1..4).
	TunePartitionCountLimit int

	// TunePartitionIndexLimit bounds the partition seeds scored per count.
	TunePartitionIndexLimit int

	// TuneCandidateLimit bounds the trial candidates carried out of the
	// endpoint format search (1..4).
	TuneCandidateLimit int

	// Tune2PlaneEarlyOutLimitCorrelation disables the dual plane search when
	// the least correlated channel still correlates with the mean of the
	// other three channels at or above this value. Zero
	// disables dual plane searches entirely.
	Tune2PlaneEarlyOutLimitCorrelation float32
}

// NewConfig builds a configuration for a block footprint at a quality
// preset. The search limits follow the reference encoder presets.
func NewConfig(profile Profile, blockX, blockY, blockZ int, quality EncodeQuality) (Config, error) {
	if !isLegalBlockSize(blockX, blockY, blockZ) {
		return Config{}, newError(ErrBadBlockSize, "astc: illegal block size")
	}
	if profile > ProfileHDR {
		return Config{}, newError(ErrBadProfile, "astc: unknown profile")
	}

	cfg := Config{
		Profile: profile,
		BlockX:  blockX,
		BlockY:  blockY,
		BlockZ:  blockZ,
		CwR:     1,
		CwG:     1,
		CwB:     1,
		CwA:     1,
	}

	switch quality {
	case EncodeFastest:
		cfg.TuneBlockModeLimit = 0.05
		cfg.TunePartitionCountLimit = 1
		cfg.TunePartitionIndexLimit = 2
		cfg.TuneCandidateLimit = 1
	case EncodeFast:
		cfg.TuneBlockModeLimit = 0.25
		cfg.TunePartitionCountLimit = 2
		cfg.TunePartitionIndexLimit = 16
		cfg.TuneCandidateLimit = 2
		cfg.Tune2PlaneEarlyOutLimitCorrelation = 0.9
	case EncodeMedium:
		cfg.TuneBlockModeLimit = 0.5
		cfg.TunePartitionCountLimit = 3
		cfg.TunePartitionIndexLimit = 64
		cfg.TuneCandidateLimit = 3
		cfg.Tune2PlaneEarlyOutLimitCorrelation = 0.95
	case EncodeThorough:
		cfg.TuneBlockModeLimit = 0.75
		cfg.TunePartitionCountLimit = 4
		cfg.TunePartitionIndexLimit = 128
		cfg.TuneCandidateLimit = 4
		cfg.Tune2PlaneEarlyOutLimitCorrelation = 0.97
	case EncodeVeryThorough:
		cfg.TuneBlockModeLimit = 0.95
		cfg.TunePartitionCountLimit = 4
		cfg.TunePartitionIndexLimit = 256
		cfg.TuneCandidateLimit = 4
		cfg.Tune2PlaneEarlyOutLimitCorrelation = 0.98
	case EncodeExhaustive:
		cfg.TuneBlockModeLimit = 1.0
		cfg.TunePartitionCountLimit = 4
		cfg.TunePartitionIndexLimit = 512
		cfg.TuneCandidateLimit = 4
		cfg.Tune2PlaneEarlyOutLimitCorrelation = 0.99
	default:
		return Config{}, newError(ErrBadQuality, "astc: unknown quality preset")
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	if !isLegalBlockSize(cfg.BlockX, cfg.BlockY, cfg.BlockZ) {
		return newError(ErrBadBlockSize, "astc: illegal block size")
	}
	if cfg.Profile > ProfileHDR {
		return newError(ErrBadProfile, "astc: unknown profile")
	}
	if cfg.TuneCandidateLimit < 1 || cfg.TuneCandidateLimit > tuneMaxTrialCandidates {
		return newError(ErrBadParam, "astc: candidate limit out of range")
	}
	if cfg.TunePartitionCountLimit < 1 || cfg.TunePartitionCountLimit > blockMaxPartitions {
		return newError(ErrBadParam, "astc: partition count limit out of range")
	}
	if cfg.TunePartitionIndexLimit < 1 || cfg.TunePartitionIndexLimit > blockMaxPartitionings {
		return newError(ErrBadParam, "astc: partition index limit out of range")
	}
	if cfg.TuneBlockModeLimit < 0 || cfg.TuneBlockModeLimit > 1 {
		return newError(ErrBadParam, "astc: block mode limit out of range")
	}
	if cfg.CwR < 0 || cfg.CwG < 0 || cfg.CwB < 0 || cfg.CwA < 0 {
		return newError(ErrBadParam, "astc: negative channel weight")
	}
	return nil
}
