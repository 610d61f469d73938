package infra

import (
	"fmt"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with the market shape.
func PrintBanner(cfg *Config) {
	color := ColorCyan

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#            📈 StockGo Market Simulator                  #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   VERSION:     %-32s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#   INSTRUMENTS: %-32d #%s\n", color, len(cfg.Market.Instruments), ColorReset)
	fmt.Printf("%s#   TICK:        %-32s #%s\n", color, cfg.TickInterval(), ColorReset)
	fmt.Printf("%s#   MAX MOVE:    ±%-31s #%s\n", color, cfg.Market.Perturbation, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
