package main

import (
	"fmt"
	"log"

	"github.com/nvr-ai/go-seg/benchmark"
)

// Example program to create and save benchmark scenarios
func main() {
	predefined := &benchmark.PredefinedScenarios{}

	quick := predefined.GetQuickScenarios()
	if err := benchmark.SaveScenarioSet(quick, "quick_scenarios.json"); err != nil {
		log.Fatalf("Failed to save quick scenarios: %v", err)
	}
	fmt.Printf("Saved %d quick scenarios\n", len(quick.Scenarios))

	sweep := predefined.GetSweepScenarios(
		[]float64{0.3, 0.5, 0.8},
		[]float32{100, 300, 500, 1000},
		[]int{20, 50, 100},
	)
	if err := benchmark.SaveScenarioSet(sweep, "sweep_scenarios.json"); err != nil {
		log.Fatalf("Failed to save sweep scenarios: %v", err)
	}
	fmt.Printf("Saved %d sweep scenarios\n", len(sweep.Scenarios))

	resolutions := predefined.GetResolutionComparisonScenarios([]int{0, 256, 320, 500})
	if err := benchmark.SaveScenarioSet(resolutions, "resolution_scenarios.json"); err != nil {
		log.Fatalf("Failed to save resolution scenarios: %v", err)
	}
	fmt.Printf("Saved %d resolution scenarios\n", len(resolutions.Scenarios))

	config := benchmark.DefaultConfig()
	config.Categories = []string{"person", "cat", "dog"}
	if err := config.SaveConfig("benchmark_config.json"); err != nil {
		log.Fatalf("Failed to save config: %v", err)
	}
	fmt.Println("Saved benchmark_config.json")
}
