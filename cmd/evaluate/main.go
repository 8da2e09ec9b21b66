// Command evaluate runs the boat limits against a saved OpenWeather
// "timemachine" payload without calling the API, so thresholds can be tried
// out offline.
//
// Usage:
//
//	evaluate -i payload.json
//	curl -s "$URL" | evaluate --limits limits.yaml
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
