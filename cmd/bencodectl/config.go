package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/bencodectl/internal/bencode"
)

type outputFormat string

const (
	outputJSON  outputFormat = "json"
	outputDebug outputFormat = "debug"
)

// profile controls how the decode subcommand reads and prints values.
type profile struct {
	Output  outputFormat
	Decoder bencode.Decoder
}

type fileProfile struct {
	Output        string `toml:"output"`
	MaxDepth      int    `toml:"max_depth"`
	AllowTrailing bool   `toml:"allow_trailing"`
}

func defaultProfile() profile {
	return profile{
		Output:  outputJSON,
		Decoder: bencode.DefaultDecoder(),
	}
}

func loadProfile(path string) (profile, error) {
	p := defaultProfile()

	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return profile{}, fmt.Errorf("load profile: %w", err)
	}

	if meta.IsDefined("output") {
		out, err := parseOutput(raw.Output)
		if err != nil {
			return profile{}, err
		}
		p.Output = out
	}

	if meta.IsDefined("max_depth") {
		if raw.MaxDepth < 1 || raw.MaxDepth > bencode.MaxNestingDepth {
			return profile{}, fmt.Errorf("parse max_depth: must be between 1 and %d, got %d", bencode.MaxNestingDepth, raw.MaxDepth)
		}
		p.Decoder.MaxDepth = raw.MaxDepth
	}

	if meta.IsDefined("allow_trailing") {
		p.Decoder.AllowTrailing = raw.AllowTrailing
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return profile{}, fmt.Errorf("load profile: unknown key %q", undecoded[0].String())
	}

	return p, nil
}

func parseOutput(raw string) (outputFormat, error) {
	switch outputFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case outputJSON:
		return outputJSON, nil
	case outputDebug:
		return outputDebug, nil
	default:
		return "", fmt.Errorf("parse output: unknown format %q", raw)
	}
}
