package service

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/triill/shelf/internal/validator"
)

// background launches fn in a goroutine tracked by the shutdown
// WaitGroup, recovering any panic so a background task cannot bring the
// server down.
func (s *service) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				s.logger.PrintError(fmt.Errorf("%s", err), nil)
			}
		}()
		fn()
	}()
}

// probeCoverImage fetches a bounded prefix of a pasted cover URL and
// sniffs the content type. The result is logged only: a bad cover URL
// never affects record persistence.
func (s *service) probeCoverImage(url string) {
	supportedMediaType := []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	}
	resp, err := s.probe.Get(url)
	if err != nil {
		s.logger.PrintWarning("cover url is unreachable", map[string]string{
			"url":   url,
			"cause": err.Error(),
		})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.logger.PrintWarning("cover url returned a non-200 response", map[string]string{
			"url":    url,
			"status": resp.Status,
		})
		return
	}
	// 3KB is enough for every sniffer mimetype implements.
	buffer, err := io.ReadAll(io.LimitReader(resp.Body, 3072))
	if err != nil {
		s.logger.PrintWarning("cover url could not be read", map[string]string{
			"url":   url,
			"cause": err.Error(),
		})
		return
	}
	mtype := mimetype.Detect(buffer)
	if !validator.Mime(mtype, supportedMediaType...) {
		s.logger.PrintWarning("cover url does not look like an image", map[string]string{
			"url":          url,
			"content_type": mtype.String(),
		})
	}
}
