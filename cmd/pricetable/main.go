// pricetable prints what every buildable costs and refunds once the Lua
// pricing rules have run, so catalog and rule edits can be checked without
// starting the game.
//
// Usage:
//
//	go run ./cmd/pricetable [buildables.yaml] [scripts dir] [output.yaml]
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sugarsyndicate/beltline/internal/data"
	"github.com/sugarsyndicate/beltline/internal/scripting"
)

type PriceRow struct {
	Kind      string  `yaml:"kind"`
	Name      string  `yaml:"name"`
	Base      int     `yaml:"base"`
	Cost      int     `yaml:"cost"`
	Refund    int     `yaml:"refund"`
	Seconds   float64 `yaml:"build_seconds"`
	Footprint string  `yaml:"footprint"`
}

type PriceFile struct {
	Prices []PriceRow `yaml:"prices"`
}

func main() {
	catalogPath := "data/yaml/buildables.yaml"
	scriptsDir := "scripts"
	if len(os.Args) > 1 {
		catalogPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		scriptsDir = os.Args[2]
	}

	catalog, err := data.LoadCatalog(catalogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := zap.NewNop()
	engine, err := scripting.NewEngine(scriptsDir, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer engine.Close()
	pricing := scripting.NewPricing(catalog, engine, log)

	var f PriceFile
	for _, b := range catalog.All() {
		cost := pricing.BuildCost(b.Kind)
		f.Prices = append(f.Prices, PriceRow{
			Kind:      b.Kind.String(),
			Name:      b.Name,
			Base:      b.Cost,
			Cost:      cost,
			Refund:    pricing.RefundFor(b.Kind, cost),
			Seconds:   b.BuildSeconds,
			Footprint: fmt.Sprintf("%dx%d", b.Footprint.W, b.Footprint.H),
		})
	}

	out, err := yaml.Marshal(&f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(os.Args) > 3 {
		if err := os.WriteFile(os.Args[3], out, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d price rows to %s\n", len(f.Prices), os.Args[3])
		return
	}
	os.Stdout.Write(out)
}
