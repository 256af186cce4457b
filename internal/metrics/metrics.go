// Package metrics exposes Prometheus metrics for the box service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BuildInfo struct {
	Version   string
	Revision  string
	BuildDate string
}

type Config struct {
	Build BuildInfo
}

// Provider owns a private registry with the Go and process collectors,
// the build info gauge and the box service metrics.
type Provider struct {
	reg       *prometheus.Registry
	buildInfo *prometheus.GaugeVec

	builds       *prometheus.CounterVec
	renderTime   *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

func Init(cfg Config) *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	build := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tabbox_build_info",
			Help: "Build info for this binary (value is always 1).",
		},
		[]string{"version", "revision", "build_date"},
	)
	v := cfg.Build
	if v.Version == "" {
		v.Version = "dev"
	}
	build.WithLabelValues(v.Version, v.Revision, v.BuildDate).Set(1)

	p := &Provider{
		reg:       reg,
		buildInfo: build,
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabbox_box_builds_total",
			Help: "Boxes built from designs, by result.",
		}, []string{"result"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tabbox_render_duration_seconds",
			Help:    "Time to build and render a box, by output format.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"format"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabbox_cache_lookups_total",
			Help: "Rendered output cache lookups, by tier and result.",
		}, []string{"tier", "result"}),
	}
	reg.MustRegister(build, p.builds, p.renderTime, p.cacheLookups)
	return p
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Provider) Register(cs ...prometheus.Collector) {
	for _, c := range cs {
		p.reg.MustRegister(c)
	}
}

func (p *Provider) Registerer() prometheus.Registerer { return p.reg }

// ObserveBuild counts one box build. A nil Provider records nothing.
func (p *Provider) ObserveBuild(err error) {
	if p == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.builds.WithLabelValues(result).Inc()
}

func (p *Provider) ObserveRender(format string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderTime.WithLabelValues(format).Observe(d.Seconds())
}

func (p *Provider) CacheHit(tier string) {
	if p == nil {
		return
	}
	p.cacheLookups.WithLabelValues(tier, "hit").Inc()
}

func (p *Provider) CacheMiss(tier string) {
	if p == nil {
		return
	}
	p.cacheLookups.WithLabelValues(tier, "miss").Inc()
}
