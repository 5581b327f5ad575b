package scrapers

import (
	"fmt"

	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/amazon"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/flipkart"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/render"
)

// Register parsers here
var parsers = []Parser{
	amazon.NewAmazonParser(),
	flipkart.NewFlipkartParser(),
}

// GetParser returns the parser for platform
func GetParser(platform models.Platform) (Parser, error) {
	for _, p := range parsers {
		if p.Platform() == platform {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
}

// hintsFor returns the render-service selectors for platform.
func hintsFor(platform models.Platform) render.Hints {
	switch platform {
	case models.PlatformAmazon:
		return render.Hints{Price: amazon.PriceHint, Specs: amazon.SpecsHint}
	case models.PlatformFlipkart:
		return render.Hints{Price: flipkart.PriceHint, Specs: flipkart.SpecsHint}
	}
	return render.Hints{}
}
