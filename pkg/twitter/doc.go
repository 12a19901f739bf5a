// Package twitter is a small client for the v2 recent search endpoint.
//
// Every request expands place and media references so a page carries
// everything needed to enrich its geo-tagged posts:
//
//	client := twitter.NewClient(cfg.Twitter, log)
//	page, err := client.FetchPage(ctx, "coffee -is:retweet", "")
//	if errors.IsType(err, errors.ErrorTypeRateLimit) {
//	    // quota for the 15 minute window is spent
//	}
//
// Failed requests come back as *errors.Error typed by HTTP status. The
// client never retries.
package twitter
