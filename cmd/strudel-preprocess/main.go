package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/strudel-workstation-go/agents/workstation"
	"github.com/Conceptual-Machines/strudel-workstation-go/config"
	"github.com/Conceptual-Machines/strudel-workstation-go/engine"
	"github.com/Conceptual-Machines/strudel-workstation-go/metrics"
	"github.com/Conceptual-Machines/strudel-workstation-go/models"
)

// listFlag collects repeated string flags
type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: Could not load .env file: %v", err)
		log.Println("   Continuing with environment variables...")
	}

	cfg := config.FromEnv()

	volume := flag.String("volume", "", "master volume multiplier for gain(...) literals")
	speed := flag.String("speed", "", "tempo multiplier for setcps(...)")
	script := flag.String("script", "", "pattern script file (default: built-in demo tune)")
	params := flag.String("params", cfg.ParamsPath, "YAML parameter file")
	engName := flag.String("engine", "stdout", "engine to hand the script to: stdout or memory")
	play := flag.Bool("play", false, "ask the engine to evaluate after handing off")
	lint := flag.Bool("lint", false, "print diagnostics to stderr")
	silence := flag.String("silence", cfg.SilenceCall, "call appended to muted instruments")

	var mute, unmute, sets listFlag
	flag.Var(&mute, "mute", "instrument id to mute (repeatable)")
	flag.Var(&unmute, "unmute", "instrument id to unmute (repeatable)")
	flag.Var(&sets, "set", "template value as name=value (repeatable)")
	flag.Parse()

	cfg.SilenceCall = *silence

	if _, err := metrics.Init(cfg); err != nil {
		log.Printf("⚠️  %v", err)
	}
	defer metrics.Flush(2 * time.Second)

	parameters := models.DefaultParameterSet()
	if *params != "" {
		loaded, err := config.LoadParameters(*params)
		if err != nil {
			log.Fatalf("❌ ERROR: %v", err)
		}
		parameters = loaded
	}
	if err := applyOverrides(parameters, *volume, *speed, mute, unmute, sets); err != nil {
		log.Fatalf("❌ ERROR: %v", err)
	}

	source := ""
	if *script != "" {
		path, err := config.ExpandPath(*script)
		if err != nil {
			log.Fatalf("❌ ERROR: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("❌ ERROR: failed to read script: %v", err)
		}
		source = string(data)
		log.Printf("📄 Loaded %s (%s)", path, humanize.Bytes(uint64(len(data))))
	}

	eng, err := engine.NewEngine(*engName, os.Stdout)
	if err != nil {
		log.Fatalf("❌ ERROR: %v", err)
	}

	session, err := workstation.NewSession(cfg, eng, source, parameters)
	if err != nil {
		log.Fatalf("❌ ERROR: %v", err)
	}
	defer session.Close()

	if *lint {
		for _, d := range session.Diagnose() {
			fmt.Fprintf(os.Stderr, "%s: %s\n", d.Kind, d)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := session.Proc(ctx, *play)
	if err != nil {
		log.Fatalf("❌ ERROR: %v", err)
	}

	log.Printf("📊 gain=%d tempo=%d template=%d muted=%d, output %s",
		result.GainRewrites, result.TempoRewrites, result.TemplateRewrites,
		len(result.MutedBlocks), humanize.Bytes(uint64(len(result.Script))))

	if mem, ok := eng.(*engine.MemoryEngine); ok {
		fmt.Println(mem.Code())
	}
}

// applyOverrides applies command-line values on top of the loaded parameters
func applyOverrides(params *models.ParameterSet, volume, speed string, mute, unmute, sets []string) error {
	if volume != "" {
		v, err := strconv.ParseFloat(volume, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("invalid -volume %q", volume)
		}
		params.Volume = v
	}
	if speed != "" {
		v, err := strconv.ParseFloat(speed, 64)
		if err != nil {
			return fmt.Errorf("invalid -speed %q", speed)
		}
		params.Speed = v
	}
	for _, id := range mute {
		params.SetInstrumentEnabled(id, false)
	}
	for _, id := range unmute {
		params.SetInstrumentEnabled(id, true)
	}
	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid -set %q (want name=value)", kv)
		}
		token := name
		if !strings.HasPrefix(name, "{{") {
			token = models.Placeholder(name)
		}
		if params.Templates == nil {
			params.Templates = make(map[string]string)
		}
		params.Templates[token] = value
	}
	return nil
}
