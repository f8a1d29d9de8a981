// Command minispark-demo builds a small dataset pipeline and prints its
// element count, as a runnable example of wiring an Engine end to end.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/minispark/minispark/pkg/minispark"
)

func main() {
	workers := flag.Int("workers", 0, "worker count override (0 = runtime.NumCPU())")
	debugAddr := flag.String("debug-addr", "", "if set, serve /debug/stats and /metrics here")
	flag.Parse()

	engine := minispark.NewEngine(minispark.Options{
		WorkerCount: *workers,
		DebugAddr:   *debugAddr,
		MetricsPath: "minispark-demo-metrics.log",
	})
	if err := engine.Start(); err != nil {
		log.Fatalf("starting engine: %v", err)
	}
	defer engine.Stop()

	source := engine.Source([][]interface{}{
		{"1", "2", "3"},
		{"4", "5", "6", "7"},
	})

	doubled, err := engine.Map(source, func(el interface{}) interface{} {
		n, _ := strconv.Atoi(el.(string))
		return n * 2
	})
	if err != nil {
		log.Fatalf("building map: %v", err)
	}

	even, err := engine.Filter(doubled, func(el interface{}, _ interface{}) bool {
		return el.(int)%4 == 0
	}, nil)
	if err != nil {
		log.Fatalf("building filter: %v", err)
	}

	count, err := engine.Count(even)
	if err != nil {
		log.Fatalf("counting: %v", err)
	}
	fmt.Println("count:", count)

	var printed []string
	err = engine.Print(even, func(el interface{}) {
		printed = append(printed, fmt.Sprintf("%v", el))
	})
	if err != nil {
		log.Fatalf("printing: %v", err)
	}
	fmt.Println("elements:", strings.Join(printed, ", "))
}
