package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/als-ai/bl531-agent/internal/agent"
	"github.com/als-ai/bl531-agent/internal/beamline"
	"github.com/als-ai/bl531-agent/internal/capabilities"
	"github.com/als-ai/bl531-agent/internal/catalog"
	"github.com/als-ai/bl531-agent/internal/governance"
	"github.com/als-ai/bl531-agent/internal/observability"
	"github.com/als-ai/bl531-agent/internal/store"
	"github.com/als-ai/bl531-agent/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	observability.PrintBanner()

	// Route all log output through the terminal mutex so it never
	// interleaves with the live status line.
	log.SetOutput(observability.NewTermWriter())

	cfg := config.LoadConfig("config.yaml")
	logger := observability.NewLogger()

	history, err := store.NewHistoryStore(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}

	// Beamline control client: mock or real, chosen once here.
	var control beamline.Client
	if cfg.Beamline.Mock {
		log.Println("BL531 control client running in MOCK mode - no beamline connection")
		control = beamline.NewMockClient()
	} else {
		control = beamline.NewQueueClient(cfg.Beamline.BaseURL, cfg.Beamline.APIKey,
			cfg.PlanTimeout(), cfg.PollInterval(), logger)
	}

	var data catalog.DataClient
	if cfg.Catalog.Mock {
		log.Println("Tiled data client running in MOCK mode - returning simulated data")
		data = catalog.NewMockDataClient()
	} else {
		data = catalog.NewTiledClient(cfg.Catalog.URI, cfg.Catalog.APIKey, logger)
	}

	// Default safety rules: keep the hexapod within its travel range
	// and leave the mono energy alone unless an operator unlocks it.
	policy := governance.NewDefaultPolicyEngine()
	policy.BoundMotor("hexapod_motor_Ty", -5.0, 5.0)
	policy.BoundMotor("hexapod_motor_Tz", -5.0, 5.0)
	policy.BoundMotor("hexapod_motor_Ry", -2.0, 2.0)
	policy.BoundMotor("hexapod_motor_Rz", -2.0, 2.0)
	policy.DenyMotor("mono_energy")

	// Register capabilities
	registry := capabilities.NewRegistry()
	registry.Register(capabilities.NewCountCapability(control, policy, history))
	registry.Register(capabilities.NewScanCapability(control, policy, history))
	registry.Register(capabilities.NewMoveCapability(control, policy, history))
	registry.Register(capabilities.NewGisaxsAlignmentCapability(control, policy, history))
	registry.Register(capabilities.NewDiodeAlignmentCapability(control, policy, history))
	registry.Register(capabilities.NewRetrieveDataCapability(data))
	registry.Register(capabilities.NewRunHistoryCapability(history))

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	var llm llms.Model
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}
	if err != nil {
		log.Fatal(err)
	}

	prompts := agent.NewPromptManager(cfg.App.PromptsDir)
	brain := agent.NewBeamlineBrain(llm, registry, history, prompts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Live status line (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
			}
		}
	}()

	// Console loop
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("bl531> ")
			if !scanner.Scan() {
				stop()
				return
			}
			input := scanner.Text()
			if input == "" {
				continue
			}

			response, err := brain.Think(ctx, "console", input)
			if err != nil {
				log.Printf("Error thinking: %v", err)
				continue
			}
			fmt.Println(response)
		}
	}()

	<-ctx.Done()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("BL531 agent stopped.")
}
