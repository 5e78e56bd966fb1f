package app

import (
	"time"

	"multiparty-params/internal/adapters"
	"multiparty-params/internal/ports"
	"multiparty-params/internal/telemetry"
	"multiparty-params/internal/types"
)

type Service struct {
	JobLoader     ports.JobSpecPort
	CatalogLoader func() ports.CatalogLoaderPort
	Output        func(dir string, format types.OutputFormat) ports.OutputPort
	OutputReader  ports.OutputReaderPort
	Watcher       ports.WatchPort
	Metrics       func(textfile string) ports.MetricsPort
	Clock         func() time.Time
}

func NewService() Service {
	return Service{
		JobLoader: adapters.NewJobFileAdapter(),
		CatalogLoader: func() ports.CatalogLoaderPort {
			return adapters.NewCatalogFileAdapter()
		},
		Output: func(dir string, format types.OutputFormat) ports.OutputPort {
			return adapters.NewOutputFileAdapter(dir, format)
		},
		OutputReader: adapters.NewOutputReaderAdapter(),
		Watcher:      adapters.NewFileWatcher(),
		Metrics: func(textfile string) ports.MetricsPort {
			return telemetry.NewMetrics(textfile)
		},
		Clock: time.Now,
	}
}
