package main

import (
	"flag"
	"log"

	"github.com/danmuck/bencodectl/internal/config"
)

const (
	defaultServerPath  = "cmd/bencodectl/server.toml"
	defaultProfilePath = "cmd/bencodectl/profile.toml"
)

func defaultPath(kind string) string {
	switch kind {
	case "server":
		return defaultServerPath
	case "profile":
		return defaultProfilePath
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}

func main() {
	kind := flag.String("kind", "server", "config kind: server|profile")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing server config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		if *kind != "server" {
			log.Fatalf("validation supports kind=server only; check profiles with bencodectl decode -profile")
		}
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}
		if _, err := config.LoadServerConfig(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
