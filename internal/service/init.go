package service

import (
	"paper-analytics/config"
	"paper-analytics/internal/tracker"
	"paper-analytics/internal/workflow"
	"paper-analytics/log"
	"paper-analytics/pkg/gumloop"

	"go.uber.org/zap"
)

// OrchestratorFactory builds one orchestrator per session, publishing to l.
type OrchestratorFactory func(l workflow.Listener) *workflow.Orchestrator

type Service struct {
	Engine   tracker.Engine
	Sessions *Sessions
}

func NewService(conf config.Config) *Service {
	engine := gumloop.NewClient(gumloop.Options{
		StatusURL: conf.Workflow.StatusUrl,
		Token:     conf.Workflow.ApiToken,
		UserID:    conf.Workflow.UserId,
		Timeout:   conf.Workflow.RequestTimeout(),
	})
	log.GetLogger().Info("workflow engine configured",
		zap.String("status_url", conf.Workflow.StatusUrl),
		zap.Duration("discovery_interval", conf.Polling.DiscoveryInterval()),
		zap.Duration("extraction_interval", conf.Polling.ExtractionInterval()))

	return &Service{
		Engine:   engine,
		Sessions: NewSessions(conf.Session.MaxSessions, NewOrchestratorFactory(engine, conf)),
	}
}

// NewOrchestratorFactory shares one submitter across sessions; each session
// gets its own poller so runs never cancel each other.
func NewOrchestratorFactory(engine tracker.Engine, conf config.Config) OrchestratorFactory {
	submitter := tracker.NewSubmitter(engine, tracker.Endpoints{
		Discovery:  conf.Workflow.DiscoveryUrl,
		Extraction: conf.Workflow.ExtractionUrl,
	})
	intervals := tracker.Intervals{
		Discovery:  conf.Polling.DiscoveryInterval(),
		Extraction: conf.Polling.ExtractionInterval(),
	}
	windows := workflow.Windows{
		Discovery:  conf.Polling.DiscoveryWindow(),
		Extraction: conf.Polling.ExtractionWindow(),
	}
	return func(l workflow.Listener) *workflow.Orchestrator {
		return workflow.New(submitter, tracker.NewPoller(engine, intervals), windows, workflow.WithListener(l))
	}
}
