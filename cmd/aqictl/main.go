// Command aqictl runs air quality assessments from the command line against a
// local model artifact, and generates mock reading fixtures.
//
// Usage:
//
//	aqictl assess --model models/sample-forest.json --pm25 180 --pm10 90 --no2 30 --so2 10 --co 1 --o3 50
//	aqictl batch --model models/sample-forest.json --in readings.jsonl
//	aqictl mock --count 100 --seed 42 > readings.jsonl
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
