// Package config loads collector settings from defaults, a YAML file,
// .env files, GEOSCRAPER_* environment variables and command line flags.
//
// Usage:
//
//	cfg, err := config.Load("", map[string]interface{}{
//	    "query":  "wildlife -is:retweet",
//	    "target": 50,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Durations in YAML use Go syntax:
//
//	rate_limit:
//	  request_interval: 2.1s
//	  requests_per_window: 450
//	  window: 15m
package config
