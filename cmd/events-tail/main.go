package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CustomGPTer/RAMS-Generator/internal/constant"
	"github.com/CustomGPTer/RAMS-Generator/pkg/events"
	pktNats "github.com/CustomGPTer/RAMS-Generator/pkg/nats"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// events-tail prints lifecycle events forwarded to NATS.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system env")
	}

	replay := flag.Bool("replay", false, "print retained history before new events")
	subject := flag.String("subject", pktNats.SubjectPrefix+">", "subject filter")
	flag.Parse()

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://localhost:4222"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, err := pktNats.NewSubscriber(url)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	color.Cyan("Listening on %s (%s)\n", url, *subject)
	err = sub.Consume(ctx, *subject, "", *replay, func(_ context.Context, e events.Event) error {
		printEvent(e)
		return nil
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
}

func printEvent(e events.Event) {
	payload, _ := json.Marshal(e.Payload())
	line := fmt.Sprintf("%s  %-26s %s", e.Timestamp().Format("15:04:05"), strings.TrimPrefix(e.EventType(), pktNats.SubjectPrefix), payload)

	switch e.EventType() {
	case constant.EventDocumentGenerated:
		color.Green("%s", line)
	case constant.EventSessionsExpired:
		color.Yellow("%s", line)
	default:
		fmt.Println(line)
	}
}
