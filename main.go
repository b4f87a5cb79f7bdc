package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	bookingx "github.com/travel-buddy/lounge-agent/agent/booking"
	catalogx "github.com/travel-buddy/lounge-agent/agent/catalog"
	driverx "github.com/travel-buddy/lounge-agent/agent/driver"
	llmx "github.com/travel-buddy/lounge-agent/agent/llm"
	promptx "github.com/travel-buddy/lounge-agent/agent/prompt"
	stagex "github.com/travel-buddy/lounge-agent/agent/stage"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
	toolx "github.com/travel-buddy/lounge-agent/agent/tool"
	configx "github.com/travel-buddy/lounge-agent/pkg/config"
	_ "github.com/travel-buddy/lounge-agent/pkg/logger/autoload"
)

type AppConfig struct {
	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`
	UserID      string `envconfig:"USER_ID" default:"local-user"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	store, err := statex.NewUpstashRedisStore(*redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init session store")
	}

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	cat, err := catalogx.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load lounge catalog")
	}
	orch, err := stagex.New(cat)
	if err != nil {
		log.Fatal().Err(err).Msg("init stage orchestrator")
	}

	prompts := promptx.LoadPromptSet()

	conciergeCfg := llmCfg.OpenRouterFor(llmx.RoleConcierge)
	concierge, err := llmx.NewConcierge(ctx, &conciergeCfg, prompts.Concierge)
	if err != nil {
		log.Fatal().Err(err).Msg("init concierge")
	}

	extractor, err := llmx.NewVisionExtractor(llmCfg.OpenRouterFor(llmx.RoleVision), prompts.Vision)
	if err != nil {
		log.Fatal().Err(err).Msg("init vision extractor")
	}

	db, err := bookingx.NewDB(appCfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open booking database")
	}
	defer db.Close()

	bookingSvc, err := bookingx.NewService(db, cat)
	if err != nil {
		log.Fatal().Err(err).Msg("init booking service")
	}
	membership, err := bookingx.NewMembership(db)
	if err != nil {
		log.Fatal().Err(err).Msg("init membership service")
	}

	gateway, err := toolx.NewGateway(cat, extractor, membership, bookingSvc)
	if err != nil {
		log.Fatal().Err(err).Msg("init tool gateway")
	}

	drv, err := driverx.New(store, concierge, gateway, orch)
	if err != nil {
		log.Fatal().Err(err).Msg("init driver")
	}

	runREPL(ctx, drv, appCfg.UserID)
}

// runREPL reads turns from stdin. A line like "/image <path>" attaches the
// file to the next empty message as a boarding pass.
func runREPL(ctx context.Context, drv *driverx.Driver, userID string) {
	fmt.Println("lounge-agent ready. Type a message, /image <path> to send a boarding pass, or /quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return
		}

		var image string
		if path, ok := strings.CutPrefix(line, "/image "); ok {
			raw, err := os.ReadFile(strings.TrimSpace(path))
			if err != nil {
				fmt.Printf("cannot read %s: %v\n", path, err)
				continue
			}
			image = encodeImage(raw)
			line = ""
		}

		out, err := drv.HandleMessage(ctx, userID, line, image)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("[%s] %s\n", out.Stage, out.Reply)
	}
}

func encodeImage(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}
