package main

import (
	"context"
	"log"
	"os"

	"github.com/chzyer/readline"

	"github.com/vbonduro/imgprompt/internal/config"
	"github.com/vbonduro/imgprompt/internal/console"
	"github.com/vbonduro/imgprompt/internal/logging"
	"github.com/vbonduro/imgprompt/internal/service"
	"github.com/vbonduro/imgprompt/internal/vision"
)

func main() {
	if err := mainImpl(); err != nil {
		log.Fatal(err)
	}
}

func mainImpl() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Text records keep stderr readable next to the prompt.
	logger, cleanup, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: "text", File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	backend, err := vision.NewBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	controller := service.NewController(vision.NewClient(backend, logger), logger)
	defer controller.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "imgprompt> ",
		AutoComplete: console.Completer(),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	return console.New(controller, console.OSC52Clipboard{W: os.Stdout}, rl.Stdout()).Run(ctx, rl)
}
