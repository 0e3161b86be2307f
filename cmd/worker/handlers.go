package main

import (
	"github.com/hibiken/asynq"

	"qrlink-backend/internal/domains/link"
	linkJob "qrlink-backend/internal/domains/link/job"
	qrJob "qrlink-backend/internal/domains/qrcode/job"
	"qrlink-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	recordScan *linkJob.RecordScanHandler
	sweepLogos *qrJob.SweepOrphanLogosHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		recordScan: linkJob.NewRecordScanHandler(c.LinkRepo),
		sweepLogos: qrJob.NewSweepOrphanLogosHandler(
			c.Storage,
			c.LinkRepo,
			c.Config.Jobs.LogoSweepGrace,
		),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Scan accounting (SCAN_MODE=queue)
	mux.HandleFunc(link.TypeRecordScan, h.recordScan.ProcessTask)

	// Maintenance
	mux.HandleFunc(qrJob.TypeSweepOrphanLogos, h.sweepLogos.ProcessTask)
}
