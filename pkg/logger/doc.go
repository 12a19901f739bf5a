// Package logger is the structured logging layer of geoscraper, built on zerolog.
//
// Console output is colored and human readable. When a log file is configured
// every event is also appended to it as a JSON line.
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "debug"})
//
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Collection finished", map[string]interface{}{
//	    "posts": 200,
//	    "pages": 17,
//	})
//
// Packages that accept a Logger can be handed a TestLogger in tests and
// assert on what was captured.
package logger
