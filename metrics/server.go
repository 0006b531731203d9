package metrics

import (
	"expvar"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Expvar metrics (legacy)
	MessagesReceived      = expvar.NewInt("discord_message_received")
	MessagesReacted       = expvar.NewInt("discord_message_reacted")
	WordsAccepted         = expvar.NewInt("words_accepted_count")
	ChainsBroken          = expvar.NewInt("chains_broken_count")
	LookupSuccessCount    = expvar.NewInt("dictionary_lookup_success_count")
	LookupFailCount       = expvar.NewInt("dictionary_lookup_fail_count")
	RoleSyncFailCount     = expvar.NewInt("role_sync_fail_count")
	ServerConfigSaveCount = expvar.NewInt("server_config_save_count")

	// Prometheus metrics with labels
	TurnOutcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_turn_outcome_total",
			Help: "Total number of processed messages by turn outcome",
		},
		[]string{"outcome"},
	)

	TurnDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "game_turn_duration_seconds",
			Help:    "Duration of one message's critical section in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	WordLookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dictionary_lookup_total",
			Help: "Total number of dictionary lookups by language and result",
		},
		[]string{"language", "result"},
	)

	DiscordCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_command_total",
			Help: "Total number of Discord commands invoked by command type",
		},
		[]string{"command"},
	)

	DiscordCommandErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_command_errors",
			Help: "Total number of Discord command errors by command type",
		},
		[]string{"command"},
	)

	DiscordCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discord_command_duration_seconds",
			Help:    "Duration of Discord command execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

type Server struct {
	*http.Server
}

func SetupServer(addr string) *Server {
	// expvar counters start at zero on boot
	MessagesReceived.Set(0)
	MessagesReacted.Set(0)
	WordsAccepted.Set(0)
	ChainsBroken.Set(0)
	LookupSuccessCount.Set(0)
	LookupFailCount.Set(0)
	RoleSyncFailCount.Set(0)
	ServerConfigSaveCount.Set(0)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewExpvarCollector(
			map[string]*prometheus.Desc{
				"discord_message_received":        prometheus.NewDesc("discord_message_received", "number of messages seen on configured channels", nil, nil),
				"discord_message_reacted":         prometheus.NewDesc("discord_message_reacted", "number of messages the bot reacted to", nil, nil),
				"words_accepted_count":            prometheus.NewDesc("words_accepted_count", "number of words that extended a chain", nil, nil),
				"chains_broken_count":             prometheus.NewDesc("chains_broken_count", "number of mistakes that reset a chain", nil, nil),
				"dictionary_lookup_success_count": prometheus.NewDesc("dictionary_lookup_success_count", "number of dictionary lookups that returned a decision", nil, nil),
				"dictionary_lookup_fail_count":    prometheus.NewDesc("dictionary_lookup_fail_count", "number of dictionary lookups that errored or timed out", nil, nil),
				"role_sync_fail_count":            prometheus.NewDesc("role_sync_fail_count", "number of failed role grant/revoke calls", nil, nil),
				"server_config_save_count":        prometheus.NewDesc("server_config_save_count", "number of server config writes", nil, nil),
			},
		),
		TurnOutcomeTotal,
		TurnDuration,
		WordLookupTotal,
		DiscordCommandTotal,
		DiscordCommandErrors,
		DiscordCommandDuration,
	)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Handle("/debug/vars", expvar.Handler())
	r.HandleFunc("/debug/pprof/*", pprof.Index)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.Get("/healthz", healthzHandler)

	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return &Server{server}
}

// healthzHandler returns a simple health check response
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) Run() {
	_ = s.ListenAndServe()
}
