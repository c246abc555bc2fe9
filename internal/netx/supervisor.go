// Package netx supervises the process-wide HTTP clients. Callers report the
// outcome of each request and the supervisor rebuilds a client whose
// connections look dead.
package netx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/config"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

// Supervisor holds a general client and a proxy-capable API client. Reads
// are a single atomic load; the mutexes only guard reconstruction.
type Supervisor struct {
	cfg     config.HTTP
	log     logging.Logger
	metrics *Metrics

	general atomic.Pointer[http.Client]
	proxied atomic.Pointer[http.Client]

	failures   atomic.Int32
	generation atomic.Uint64

	mu sync.Mutex

	proxyMu sync.Mutex
	proxy   config.Proxy
}

type Option func(*Supervisor)

func WithLogger(l logging.Logger) Option {
	return func(s *Supervisor) { s.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Supervisor) { s.metrics = m }
}

// WithProxy sets the initial proxy of the API client.
func WithProxy(p config.Proxy) Option {
	return func(s *Supervisor) { s.proxy = p }
}

// NewSupervisor builds both clients according to cfg. Zero-valued fields of
// cfg fall back to the defaults of config.LoadDefaults.
func NewSupervisor(cfg config.HTTP, opts ...Option) *Supervisor {
	var def config.Config
	def.LoadDefaults()
	fillDefaults(&cfg, def.HTTP)

	s := &Supervisor{cfg: cfg, log: logging.Nop()}
	for _, o := range opts {
		o(s)
	}

	s.general.Store(s.newGeneralClient())
	s.proxied.Store(s.newProxyClient(s.proxy))
	return s
}

func fillDefaults(cfg *config.HTTP, def config.HTTP) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.ProxyConnectTimeout <= 0 {
		cfg.ProxyConnectTimeout = def.ProxyConnectTimeout
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = def.IdleConnTimeout
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = def.KeepAlive
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = def.MaxRedirects
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
}

func (s *Supervisor) newClient(connectTimeout time.Duration, proxy func(*http.Request) (*url.URL, error)) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: s.cfg.KeepAlive,
	}

	// Some counterpart servers misbehave on HTTP/2.
	protocols := new(http.Protocols)
	protocols.SetHTTP1(true)

	transport := &http.Transport{
		Proxy:               proxy,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: connectTimeout,
		MaxIdleConnsPerHost: s.cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     s.cfg.IdleConnTimeout,
		Protocols:           protocols,
	}

	maxRedirects := s.cfg.MaxRedirects
	return &http.Client{
		Transport: transport,
		Timeout:   s.cfg.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

func (s *Supervisor) newGeneralClient() *http.Client {
	return s.newClient(s.cfg.ConnectTimeout, http.ProxyFromEnvironment)
}

// newProxyClient routes through p when it is enabled and parses; otherwise
// the client connects directly.
func (s *Supervisor) newProxyClient(p config.Proxy) *http.Client {
	var proxy func(*http.Request) (*url.URL, error)
	if p.Enabled && p.URL != "" {
		u, err := parseProxyURL(p.URL)
		if err != nil {
			s.log.Warn(context.Background(), "invalid proxy url, connecting directly", "url", p.URL, "err", err)
		} else {
			proxy = http.ProxyURL(u)
			s.log.Info(context.Background(), "api client using proxy", "url", u.Redacted())
		}
	}
	return s.newClient(s.cfg.ProxyConnectTimeout, proxy)
}

func parseProxyURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("proxy url needs a scheme and a host")
	}
	return u, nil
}

// GetClient returns the current general client. Once the failure counter has
// reached the threshold the caller tries to rebuild it, but only if no other
// caller is already doing so; otherwise it proceeds with the current client.
func (s *Supervisor) GetClient() *http.Client {
	if s.failures.Load() >= int32(s.cfg.FailureThreshold) && s.mu.TryLock() {
		if s.failures.Load() >= int32(s.cfg.FailureThreshold) {
			s.rebuildLocked(reasonFailures)
		}
		s.mu.Unlock()
	}
	return s.general.Load()
}

// GetProxyClient returns the current API client.
func (s *Supervisor) GetProxyClient() *http.Client {
	return s.proxied.Load()
}

func (s *Supervisor) ReportRequestSuccess() {
	s.failures.Store(0)
	s.metrics.setFailures(0)
}

// ReportRequestFailure counts a failed request and rebuilds the general
// client as soon as the count reaches the threshold.
func (s *Supervisor) ReportRequestFailure() {
	n := s.failures.Add(1)
	s.metrics.setFailures(n)
	s.log.Debug(context.Background(), "http request failed", "consecutive_failures", n)
	if n < int32(s.cfg.FailureThreshold) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent caller may have rebuilt while we waited.
	if s.failures.Load() >= int32(s.cfg.FailureThreshold) {
		s.rebuildLocked(reasonThreshold)
	}
}

// ReportTimeoutError rebuilds the general client unconditionally.
func (s *Supervisor) ReportTimeoutError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildLocked(reasonTimeout)
}

// Rebuild replaces the general client and resets the failure counter.
func (s *Supervisor) Rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildLocked(reasonManual)
}

func (s *Supervisor) rebuildLocked(reason string) {
	n := s.failures.Load()
	old := s.general.Swap(s.newGeneralClient())
	s.failures.Store(0)
	gen := s.generation.Add(1)

	// In-flight requests on old keep their connections.
	old.CloseIdleConnections()

	s.metrics.recordRebuild(clientGeneral, reason)
	s.metrics.setFailures(0)
	s.log.Info(context.Background(), "http client rebuilt",
		"reason", reason, "consecutive_failures", n, "generation", gen)
}

// UpdateProxyConfig stores the proxy setting and rebuilds the API client
// with it. An unparsable url is logged and the client connects directly.
func (s *Supervisor) UpdateProxyConfig(enabled bool, rawURL string) {
	s.proxyMu.Lock()
	defer s.proxyMu.Unlock()

	s.proxy = config.Proxy{Enabled: enabled, URL: rawURL}
	old := s.proxied.Swap(s.newProxyClient(s.proxy))
	old.CloseIdleConnections()
	s.metrics.recordRebuild(clientProxy, reasonProxyConfig)
}

// ProxyConfig returns the cached proxy setting.
func (s *Supervisor) ProxyConfig() config.Proxy {
	s.proxyMu.Lock()
	defer s.proxyMu.Unlock()
	return s.proxy
}

// Generation counts general client rebuilds since construction.
func (s *Supervisor) Generation() uint64 {
	return s.generation.Load()
}

func (s *Supervisor) ConsecutiveFailures() int {
	return int(s.failures.Load())
}

// Do sends req with the general client and reports the outcome: a timeout
// forces a rebuild, any other transport error counts as a failure, and any
// response, whatever its status, counts as a success.
func (s *Supervisor) Do(req *http.Request) (*http.Response, error) {
	resp, err := s.GetClient().Do(req)
	if err != nil {
		if isTimeout(err) {
			s.metrics.recordRequest(outcomeTimeout)
			s.ReportTimeoutError()
		} else {
			s.metrics.recordRequest(outcomeFailure)
			s.ReportRequestFailure()
		}
		return nil, err
	}

	s.metrics.recordRequest(outcomeSuccess)
	s.ReportRequestSuccess()
	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
