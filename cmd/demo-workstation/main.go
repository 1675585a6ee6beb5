package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/strudel-workstation-go/agents/workstation"
	"github.com/Conceptual-Machines/strudel-workstation-go/config"
	"github.com/Conceptual-Machines/strudel-workstation-go/engine"
	"github.com/Conceptual-Machines/strudel-workstation-go/metrics"
)

// step is one control change in the walkthrough
type step struct {
	description string
	apply       func(s *workstation.Session)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: Could not load .env file: %v", err)
		log.Println("   Continuing with environment variables...")
	}

	cfg := config.FromEnv()
	if _, err := metrics.Init(cfg); err != nil {
		log.Printf("⚠️  %v", err)
	}
	defer metrics.Flush(2 * time.Second)

	eng := engine.NewWriterEngine("stdout", os.Stdout)

	// Empty script: the session starts from the demo tune
	session, err := workstation.NewSession(cfg, eng, "", nil)
	if err != nil {
		log.Fatalf("❌ ERROR: %v", err)
	}
	defer session.Close()

	steps := []step{
		{"initial state", func(s *workstation.Session) {}},
		{"mute drums", func(s *workstation.Session) { s.SetInstrumentEnabled("drums", false) }},
		{"double speed", func(s *workstation.Session) { s.SetSpeed(2) }},
		{"more reverb", func(s *workstation.Session) { s.SetTemplateValue("space", "0.8") }},
		{"mute bass, unmute drums", func(s *workstation.Session) {
			s.SetInstrumentEnabled("bass", false)
			s.SetInstrumentEnabled("drums", true)
		}},
		{"fader ride (coalesced)", func(s *workstation.Session) {
			for _, v := range []float64{0.6, 0.7, 0.8, 0.9} {
				s.SetVolume(v)
				s.Schedule(context.Background())
			}
		}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i, st := range steps {
		fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Printf("Step %d/%d: %s\n", i+1, len(steps), st.description)
		fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

		st.apply(session)

		// Flush delivers anything the step scheduled, then play the result
		if err := session.Flush(ctx); err != nil {
			log.Printf("❌ Error: %v", err)
			continue
		}
		if _, err := session.Proc(ctx, true); err != nil {
			log.Printf("❌ Error: %v", err)
		}
	}

	fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("✅ Walkthrough completed!\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}
