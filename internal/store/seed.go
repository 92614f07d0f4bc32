package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// seedNamespace keeps seeded review ids stable across runs so reseeding
// is idempotent.
var seedNamespace = uuid.MustParse("5b0c3f6e-8e0a-4c55-9d55-2f7a0d6c1e11")

// DemoProducts is the Astronomy Shop catalog.
var DemoProducts = []Product{
	{ID: "OLJCESPC7Z", Name: "National Park Foundation Explorascope", Picture: "NationalParkFoundationExplorascope.jpg", Categories: []string{"telescopes"}},
	{ID: "66VCHSJNUP", Name: "Starsense Explorer Telescope", Picture: "StarsenseExplorer.jpg", Categories: []string{"telescopes"}},
	{ID: "1YMWWN1N4O", Name: "Roof Binoculars", Picture: "RoofBinoculars.jpg", Categories: []string{"binoculars"}},
	{ID: "L9ECAV7KIM", Name: "Eclipsmart Travel Refractor Telescope", Picture: "EclipsmartTravelRefractorTelescope.jpg", Categories: []string{"telescopes", "travel"}},
	{ID: "2ZYFJ3GM2N", Name: "Solar System Color Imager", Picture: "SolarSystemColorImager.jpg", Categories: []string{"accessories", "telescopes"}},
	{ID: "0PUK6V6EV0", Name: "Solar Filter", Picture: "SolarFilter.jpg", Categories: []string{"accessories", "telescopes"}},
	{ID: "LS4PSXUNUM", Name: "Red Flashlight", Picture: "RedFlashlight.jpg", Categories: []string{"accessories", "flashlights"}},
	{ID: "9SIQT8TOJO", Name: "Optical Tube Assembly", Picture: "OpticalTubeAssembly.jpg", Categories: []string{"accessories", "telescopes", "assembly"}},
	{ID: "6E92ZMYYFZ", Name: "The Comet Book", Picture: "TheCometBook.jpg", Categories: []string{"books"}},
	{ID: "HQTGWGPNH4", Name: "Lens Cleaning Kit", Picture: "LensCleaningKit.jpg", Categories: []string{"accessories"}},
}

var (
	demoAuthors = []string{"Ada", "Lin", "Noor", "Tomas", "Priya", "Kofi", "Mei", "Sam"}
	demoTitles  = map[int][]string{
		1: {"Disappointed", "Broke in a week", "Not as described"},
		2: {"Meh", "Could be better", "Fiddly"},
		3: {"Does the job", "Average", "Fine for the price"},
		4: {"Pretty good", "Solid buy", "Happy with it"},
		5: {"Fantastic", "Clear skies, clear views", "Exceeded expectations"},
	}
)

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Products int
	Reviews  int
}

// Seed inserts the demo catalog plus perProduct generated reviews for each
// product. Review content is derived from a fixed seed so repeated calls
// insert nothing new.
func (s *Store) Seed(ctx context.Context, perProduct int, now time.Time) (SeedResult, error) {
	var res SeedResult

	n, err := s.SaveProducts(DemoProducts)
	if err != nil {
		return res, fmt.Errorf("seed products: %w", err)
	}
	res.Products = n

	batches := make([][]Review, len(DemoProducts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range DemoProducts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			batches[i] = demoReviews(p.ID, uint64(i), perProduct, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for _, b := range batches {
		n, err := s.SaveReviews(b)
		if err != nil {
			return res, fmt.Errorf("seed reviews: %w", err)
		}
		res.Reviews += n
	}
	return res, nil
}

func demoReviews(productID string, stream uint64, count int, now time.Time) []Review {
	rng := rand.New(rand.NewPCG(0x5e1f, stream))
	out := make([]Review, 0, count)
	for i := range count {
		rating := skewedRating(rng)
		titles := demoTitles[rating]
		out = append(out, Review{
			ID:           uuid.NewSHA1(seedNamespace, fmt.Appendf(nil, "%s/%d", productID, i)).String(),
			ProductID:    productID,
			Rating:       rating,
			Title:        titles[rng.IntN(len(titles))],
			Body:         fmt.Sprintf("Review %d of %s.", i+1, productID),
			Author:       demoAuthors[rng.IntN(len(demoAuthors))],
			CreatedAt:    now.Add(-time.Duration(rng.IntN(90*24)) * time.Hour).Truncate(time.Second),
			HelpfulCount: rng.IntN(25),
			Recommended:  rating >= 4,
		})
	}
	return out
}

// skewedRating favours higher ratings the way real storefront reviews do.
func skewedRating(rng *rand.Rand) int {
	switch r := rng.IntN(100); {
	case r < 5:
		return 1
	case r < 12:
		return 2
	case r < 27:
		return 3
	case r < 57:
		return 4
	default:
		return 5
	}
}
