package connectivity

import (
	"context"
	"net/http"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/core/port"
)

// Prober polls a URL and drives the monitor: any HTTP answer means online, a transport error offline.
type Prober struct {
	monitor  *Monitor
	client   *http.Client
	url      string
	interval time.Duration
	logger   port.LoggerPort
}

func NewProber(monitor *Monitor, url string, interval time.Duration, logger port.LoggerPort) *Prober {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Prober{
		monitor:  monitor,
		client:   &http.Client{Timeout: 5 * time.Second},
		url:      url,
		interval: interval,
		logger:   logger,
	}
}

// Probe runs one check and updates the monitor.
func (p *Prober) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.logger.Error("Invalid probe URL", err, port.Fields{"url": p.url})
		return p.monitor.IsOffline()
	}
	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return p.monitor.IsOffline()
		}
		p.logger.Debug("Probe failed.", port.Fields{"url": p.url, "error": err.Error()})
		p.monitor.SetOffline()
		return true
	}
	resp.Body.Close()
	p.monitor.SetOnline()
	return false
}

// Run probes immediately, then on every tick until ctx is done.
func (p *Prober) Run(ctx context.Context) {
	p.logger.Info("Connectivity prober started.", port.Fields{"url": p.url, "interval": p.interval.String()})
	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Connectivity prober stopped.", nil)
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
