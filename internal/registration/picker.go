package registration

import (
	"math"

	"github.com/qbazz/storefront/internal/domain"
	apperrors "github.com/qbazz/storefront/pkg/errors"
)

// MapImageURL is the bazaar map the location step is picked on.
const MapImageURL = "https://i.ibb.co/kHbz91T/grand-bazaar-map.jpg"

// Click is a pointer position in page pixels.
type Click struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is the map image's bounding box in page pixels.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// PickCoordinate converts a click inside the map image to percent of the
// image height (Lat) and width (Lng), clamped to 0..100.
func PickCoordinate(click Click, box Box) (domain.Coords, error) {
	if box.Width <= 0 || box.Height <= 0 {
		return domain.Coords{}, apperrors.InvalidInput("map box must have a positive size")
	}
	return domain.Coords{
		Lat: clamp((click.Y - box.Top) / box.Height * 100),
		Lng: clamp((click.X - box.Left) / box.Width * 100),
	}, nil
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
