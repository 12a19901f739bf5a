package collector_test

import (
	"context"
	"fmt"

	"geoscraper/pkg/collector"
	"geoscraper/pkg/config"
	"geoscraper/pkg/logger"
	"geoscraper/pkg/ratelimit"
	"geoscraper/pkg/twitter"
)

// onePage serves a single page with one geo-tagged post
type onePage struct{}

func (onePage) FetchPage(ctx context.Context, query, nextToken string) (*twitter.Page, error) {
	page := &twitter.Page{
		Data: []twitter.Post{
			{ID: "1", Text: "no geo"},
			{ID: "2", Text: "at the lake", Geo: &twitter.PostGeo{PlaceID: "p1"}},
		},
	}
	page.Includes.Places = []twitter.Place{
		{ID: "p1", FullName: "Lake Town", Geo: twitter.PlaceGeo{BBox: []float64{0, 0, 10, 20}}},
	}
	return page, nil
}

// printSink prints instead of writing a file
type printSink struct{}

func (printSink) WritePosts(posts []twitter.Post) error {
	for _, p := range posts {
		fmt.Printf("%s %s %v\n", p.ID, p.PlaceInfo.FullName, p.PlaceInfo.Geo.Center)
	}
	return nil
}

func (printSink) Path() string { return "stdout" }

func ExampleCollector_Run() {
	cfg := config.DefaultConfig()
	cfg.Search.Query = "lake has:geo"
	cfg.Search.TargetCount = 1

	c, err := collector.New(cfg, onePage{}, printSink{}, logger.NewNopLogger())
	if err != nil {
		fmt.Println(err)
		return
	}
	c.SetLimiter(ratelimit.Nop{})

	res, err := c.Run(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.StopReason, res.Pages, res.Seen)
	// Output:
	// 2 Lake Town [5 10]
	// target_reached 1 2
}
