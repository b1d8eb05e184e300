// Command aicheck is a connectivity self-test for the Gemini transport: it
// sends one canned prompt and reports pass/fail.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"ideagauge/internal/config"
	"ideagauge/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.DefaultAIConfig()
	client := service.NewGeminiClient(cfg)

	if !client.IsConfigured() {
		fmt.Println("FAIL: GEMINI_API_KEY is not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Printf("Sending test prompt to %s", cfg.Models.Respond)
	reply, err := client.GenerateText(ctx, cfg.Models.Respond, `Reply with the single word "ok".`)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAIAuth):
			fmt.Println("FAIL: authentication or configuration error; check GEMINI_API_KEY")
		case errors.Is(err, service.ErrAITimeout):
			fmt.Println("FAIL: request timed out; the service may be slow or unreachable")
		default:
			fmt.Printf("FAIL: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("PASS: model replied %q\n", reply)
}
