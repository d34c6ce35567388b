package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSectionActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cv",
		Name:      "section_actions_total",
		Help:      "Accordion actions by kind and whether they changed state.",
	}, []string{"action", "changed"})
	metricDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cv",
		Name:      "downloads_total",
		Help:      "CV download requests by language and outcome.",
	}, []string{"lang", "outcome"})
	metricLanguageSwitches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cv",
		Name:      "language_switches_total",
		Help:      "Language switches by target language.",
	}, []string{"lang"})
	metricActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cv",
		Name:      "active_sessions",
		Help:      "Open page sessions held in memory.",
	})
)

func recordSectionAction(action string, changed bool) {
	c := "false"
	if changed {
		c = "true"
	}
	metricSectionActions.WithLabelValues(action, c).Inc()
}

func recordDownload(lang, outcome string) {
	metricDownloads.WithLabelValues(lang, outcome).Inc()
}

func recordLanguageSwitch(lang string) {
	metricLanguageSwitches.WithLabelValues(lang).Inc()
}
