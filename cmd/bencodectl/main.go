package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danmuck/bencodectl/internal/bencode"
	"github.com/danmuck/bencodectl/internal/command"
	"github.com/danmuck/bencodectl/internal/config"
	"github.com/danmuck/bencodectl/internal/logging"
	"github.com/danmuck/bencodectl/internal/observability"
	"github.com/danmuck/bencodectl/internal/server"
	"github.com/rs/zerolog/log"
)

const usageText = `usage: bencodectl <subcommand> [flags] [args]

subcommands:
  decode [-profile path] [-output json|debug] [file|-]   decode a bencoded blob
  run <command> [args...]                                run test|health|echo|add
  serve [-config path]                                   start the HTTP service
`

func main() {
	logging.ConfigureRuntime()
	observability.InitLogger("bencodectl")
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return 2
	}

	var err error
	switch args[0] {
	case "decode":
		err = runDecode(args[1:], stdin, stdout, stderr)
	case "run":
		err = runCommand(args[1:], stdout)
	case "serve":
		err = runServe(args[1:], stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usageText)
		return 0
	default:
		fmt.Fprintf(stderr, "bencodectl: unknown subcommand %q\n", args[0])
		fmt.Fprint(stderr, usageText)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "bencodectl: %v\n", err)
		return 1
	}
	return 0
}

func runDecode(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	profilePath := fs.String("profile", "", "decode profile (toml)")
	output := fs.String("output", "", "output format override: json|debug")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := defaultProfile()
	if *profilePath != "" {
		loaded, err := loadProfile(*profilePath)
		if err != nil {
			return err
		}
		p = loaded
	}
	if *output != "" {
		out, err := parseOutput(*output)
		if err != nil {
			return err
		}
		p.Output = out
	}

	input, source, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	start := time.Now()
	v, err := p.Decoder.Decode(input)
	if err != nil {
		var de *bencode.DecodeError
		if errors.As(err, &de) {
			log.Debug().
				Str("source", source).
				Str("kind", de.Kind.String()).
				Int("offset", de.Offset).
				Msg("decode rejected")
		}
		return fmt.Errorf("decode %s: %w", source, err)
	}
	log.Debug().
		Str("source", source).
		Str("kind", v.Kind().String()).
		Int("bytes", len(input)).
		Dur("duration", time.Since(start)).
		Msg("decoded")

	return writeValue(stdout, v, p.Output)
}

func readInput(path string, stdin io.Reader) ([]byte, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "stdin", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read input: %w", err)
	}
	return data, path, nil
}

func writeValue(w io.Writer, v bencode.Value, format outputFormat) error {
	if format == outputDebug {
		_, err := fmt.Fprintln(w, v.String())
		return err
	}
	raw, err := json.MarshalIndent(v.Interface(), "", "  ")
	if err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

func runCommand(args []string, stdout io.Writer) error {
	cmd, err := command.Parse(args)
	if err != nil {
		return err
	}
	out, err := command.Execute(cmd)
	if err != nil {
		return err
	}
	log.Debug().Str("command", cmd.Name()).Msg("command executed")
	fmt.Fprint(stdout, command.Serialize(cmd))
	fmt.Fprintln(stdout, out)
	return nil
}

func runServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "server config (toml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.DefaultServerConfig()
	if *configPath != "" {
		loaded, err := config.LoadServerConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		log.Info().Str("path", *configPath).Msg("loaded server config")
	}
	return server.New(cfg).Serve()
}
