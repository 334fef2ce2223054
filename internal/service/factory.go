package service

import (
	"github.com/pulsehq/pulse/internal/index"
	"github.com/pulsehq/pulse/internal/notify"
	"github.com/pulsehq/pulse/internal/store"
	"github.com/pulsehq/pulse/internal/stream"
)

// Services wires every service over the shared stores and adapters.
type Services struct {
	stores   *store.Stores
	adapter  *index.Adapter
	analyzer Classifier
	notifier notify.Notifier
	activity stream.Publisher
}

func NewServices(stores *store.Stores, adapter *index.Adapter, analyzer Classifier, notifier notify.Notifier, activity stream.Publisher) *Services {
	return &Services{
		stores:   stores,
		adapter:  adapter,
		analyzer: analyzer,
		notifier: notifier,
		activity: activity,
	}
}

func (s *Services) Ingest() IngestService {
	return NewIngestService(s.stores.Feedback, s.analyzer, s.adapter)
}

func (s *Services) Search() SearchService {
	return NewSearchService(s.stores.Feedback, s.adapter)
}

func (s *Services) Insights() InsightService {
	return NewInsightService(s.stores.Feedback)
}

func (s *Services) Triage() TriageService {
	return NewTriageService(s.stores.Feedback, s.notifier, s.activity, s.adapter)
}
