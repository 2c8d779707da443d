package config

import "github.com/danmuck/bencodectl/internal/bencode"

// NewDecoder builds the decoder described by cfg. An unset max_depth falls
// back to bencode.DefaultMaxDepth.
func (cfg DecoderConfig) NewDecoder() bencode.Decoder {
	return bencode.Decoder{
		MaxDepth:      cfg.MaxDepth,
		AllowTrailing: cfg.AllowTrailing,
	}
}
