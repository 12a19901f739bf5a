// Package collector drives a collection run.
//
// Each iteration waits on the rate limiter, fetches the next page, keeps
// its geo-tagged posts and checks whether to stop:
//
//	c, err := collector.NewFromConfig(cfg, log)
//	if err != nil {
//	    return err
//	}
//	res, err := c.Run(ctx)
//
// The run stops once the collection holds at least the target number of
// posts or the endpoint returns no next_token. Pages are never truncated,
// so the final count may exceed the target. The output is written exactly
// once, after the loop; a failed run writes nothing.
package collector
