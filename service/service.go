package service

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/triill/shelf/config"
	"github.com/triill/shelf/data"
	"github.com/triill/shelf/internal/jsonlog"
	"github.com/triill/shelf/repository"
)

type Service interface {
	books
}

// service defines the service layer. It owns the stats cache because the
// mutating operations are the only places the cache can go stale.
type service struct {
	config config.Config
	wg     *sync.WaitGroup
	logger *jsonlog.Logger
	repo   repository.Repository
	cache  *ttlcache.Cache[string, data.BookStats]
	probe  *http.Client
}

// New creates a new instance of Service.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository) *service {
	cache := ttlcache.New(ttlcache.WithTTL[string, data.BookStats](30 * time.Second))
	go cache.Start()
	return &service{
		config: cfg,
		wg:     wg,
		logger: logger,
		repo:   repo,
		cache:  cache,
		probe:  newProbeClient(),
	}
}

// newProbeClient builds the HTTP client used for cover-image probes.
// Probes hit arbitrary user-pasted URLs, so redirects are capped.
func newProbeClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          25,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
		CheckRedirect: redirectPolicyFunc,
		Timeout:       10 * time.Second,
	}
}

func redirectPolicyFunc(req *http.Request, via []*http.Request) error {
	if len(via) >= 2 {
		return http.ErrUseLastResponse
	}
	return nil
}
