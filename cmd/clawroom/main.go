package main

import (
	"flag"

	"clawroom/internal/config"
	"clawroom/internal/game"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "tuning file")
	flag.Parse()

	cfg := config.Load(*configPath)
	game.Run(game.New(cfg))
}
