package dns

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/happy-sdk/space-dns/internal/cache"
)

// Server is a caching DNS forwarder. A/AAAA queries are answered from
// the record cache when possible; everything else, and every miss, is
// exchanged with the upstream resolver.
type Server struct {
	addr       string
	upstream   string
	timeout    time.Duration
	sweepEvery time.Duration
	server     *dns.Server
	table      *cache.Table
	logger     Logger

	mu      sync.RWMutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// Config holds DNS server configuration
type Config struct {
	Addr          string        // Address to listen on (e.g., "127.0.0.1:5353")
	Upstream      string        // Upstream DNS server (e.g., "1.1.1.1:53")
	CacheSize     int           // Maximum cached records; <= 0 disables caching
	SweepInterval time.Duration // Period of the expiry sweep (default: 30s)
	Timeout       time.Duration // Upstream exchange timeout (default: 2s)
	Logger        Logger        // Logger
}

// NewServer creates a new DNS server
func NewServer(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:5353"
	}
	if cfg.Upstream == "" {
		cfg.Upstream = "1.1.1.1:53"
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 30 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = NewSimpleLogger(false)
	}

	s := &Server{
		addr:       cfg.Addr,
		upstream:   cfg.Upstream,
		timeout:    cfg.Timeout,
		sweepEvery: cfg.SweepInterval,
		table:      cache.New(cfg.CacheSize),
		logger:     cfg.Logger,
		stop:       make(chan struct{}),
	}

	mux := dns.NewServeMux()
	mux.HandleFunc(".", s.handleQuery)

	s.server = &dns.Server{
		Addr:    cfg.Addr,
		Net:     "udp",
		Handler: mux,
	}

	return s, nil
}

// Start starts the DNS server and the background expiry sweep
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("Starting DNS server", "addr", s.addr, "upstream", s.upstream)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	// Wait a bit to ensure server started
	select {
	case err := <-errCh:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("failed to start DNS server: %w", err)
	case <-time.After(100 * time.Millisecond):
		s.wg.Add(1)
		go s.sweepLoop()
		s.logger.Info("DNS server started successfully")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops the DNS server, the sweep goroutine, and tears down the cache
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.logger.Info("Stopping DNS server")

	if err := s.server.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop DNS server: %w", err)
	}

	close(s.stop)
	s.wg.Wait()
	s.table.Close()

	s.running = false
	s.logger.Info("DNS server stopped")
	return nil
}

// handleQuery answers address queries from the cache and forwards
// everything else upstream
func (s *Server) handleQuery(w dns.ResponseWriter, r *dns.Msg) {
	if len(r.Question) == 1 {
		q := r.Question[0]
		if cacheable(q) {
			if m := s.cachedAnswer(r, q); m != nil {
				s.logger.Debug("DNS cache hit", "name", q.Name, "type", dns.TypeToString[q.Qtype])
				s.writeMsg(w, m)
				return
			}
		}
	}

	resp, err := s.exchange(r)
	if err != nil {
		s.logger.Warn("Failed to forward DNS query", "error", err)
		m := new(dns.Msg)
		m.SetRcode(r, dns.RcodeServerFailure)
		s.writeMsg(w, m)
		return
	}

	s.cacheAnswers(resp)
	s.writeMsg(w, resp)
}

// cacheable reports whether a question can be served from the record cache
func cacheable(q dns.Question) bool {
	if q.Qclass != dns.ClassINET {
		return false
	}
	return q.Qtype == dns.TypeA || q.Qtype == dns.TypeAAAA
}

// cachedAnswer builds a reply from the cache, or returns nil on a miss.
// A served entry counts as confirmed, so it is touched before release.
func (s *Server) cachedAnswer(r *dns.Msg, q dns.Question) *dns.Msg {
	h, ok := s.table.Get(q.Name, cache.RecordType(q.Qtype))
	if !ok {
		return nil
	}
	defer s.table.Release(h)

	s.table.Touch(h)
	ttl := s.table.RemainingTTL(h)

	m := new(dns.Msg)
	m.SetReply(r)
	m.RecursionAvailable = true

	hdr := dns.RR_Header{
		Name:   q.Name,
		Rrtype: q.Qtype,
		Class:  dns.ClassINET,
		Ttl:    uint32(ttl),
	}
	switch q.Qtype {
	case dns.TypeA:
		m.Answer = append(m.Answer, &dns.A{Hdr: hdr, A: h.Addr()})
	case dns.TypeAAAA:
		m.Answer = append(m.Answer, &dns.AAAA{Hdr: hdr, AAAA: h.Addr()})
	}
	return m
}

// cacheAnswers inserts every A/AAAA answer of a successful upstream
// response, keyed by owner name with the record's own TTL
func (s *Server) cacheAnswers(resp *dns.Msg) {
	if resp.Rcode != dns.RcodeSuccess {
		return
	}

	for _, rr := range resp.Answer {
		var (
			rtype cache.RecordType
			addr  []byte
		)
		switch a := rr.(type) {
		case *dns.A:
			ip := a.A.To4()
			if ip == nil {
				continue
			}
			rtype, addr = cache.TypeA, ip
		case *dns.AAAA:
			ip := a.AAAA.To16()
			if ip == nil {
				continue
			}
			rtype, addr = cache.TypeAAAA, ip
		default:
			continue
		}

		name := rr.Header().Name
		if err := s.table.Insert(name, int(rr.Header().Ttl), rtype, addr); err != nil {
			s.logger.Debug("Failed to cache record", "name", name, "error", err)
			continue
		}
		s.logger.Debug("Cached record", "name", name, "type", rtype.String(), "ttl", rr.Header().Ttl)
	}
}

// exchange forwards a query to the upstream resolver
func (s *Server) exchange(r *dns.Msg) (*dns.Msg, error) {
	c := new(dns.Client)
	c.Timeout = s.timeout

	resp, _, err := c.Exchange(r, s.upstream)
	return resp, err
}

func (s *Server) writeMsg(w dns.ResponseWriter, m *dns.Msg) {
	if err := w.WriteMsg(m); err != nil {
		s.logger.Debug("Failed to write DNS response", "error", err)
	}
}

// sweepLoop periodically drops expired records. Lookups already expire
// lazily; the sweep reclaims records nobody queries anymore.
func (s *Server) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			before := s.table.Len()
			s.table.InvalidateExpired()
			if dropped := before - s.table.Len(); dropped > 0 {
				s.logger.Debug("Expiry sweep", "dropped", dropped, "remaining", s.table.Len())
			}
		}
	}
}

// IsRunning returns true if the server is running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server address
func (s *Server) Addr() string {
	return s.addr
}

// CacheLen returns the number of records currently cached
func (s *Server) CacheLen() int {
	return s.table.Len()
}
