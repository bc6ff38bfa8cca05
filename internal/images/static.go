package images

import (
	"context"
	"errors"
	"math/rand/v2"
)

// Static picks from a fixed list of image URLs. It stands in for Unsplash in
// local development.
type Static struct {
	urls []string
}

func NewStatic(urls []string) *Static {
	return &Static{urls: append([]string(nil), urls...)}
}

func (s *Static) FetchRandomImage(context.Context) (string, error) {
	if len(s.urls) == 0 {
		return "", errors.New("no static images configured")
	}
	return s.urls[rand.IntN(len(s.urls))], nil
}
