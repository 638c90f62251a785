package api

import (
	"github.com/jmaxwell/sellforge/internal/batch"
	"github.com/jmaxwell/sellforge/internal/intake"
	"github.com/jmaxwell/sellforge/internal/pipeline"
	"github.com/jmaxwell/sellforge/internal/session"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Intake intake.System
	Batch  batch.System
}

// NewDomain creates all domain systems from the API runtime. Batch runs
// execute on the lifecycle context so shutdown interrupts the login wait.
func NewDomain(runtime *Runtime) *Domain {
	cfg := runtime.Config

	intakeSystem := intake.New(cfg.Intake.SpoolDir, runtime.Logger)

	sessions := session.NewManager(&cfg.Session, runtime.Logger)
	renderer := pipeline.NewRenderer(cfg.Pipeline.OutputDir, runtime.Logger)

	batchSystem := batch.New(
		runtime.Lifecycle.Context(),
		intakeSystem,
		sessions,
		batch.Pipeline{
			Extract:   pipeline.NewExtractor(runtime.Logger),
			Transform: pipeline.NewTransformer(cfg.Agent.AgentConfig, runtime.Logger),
			Render:    renderer,
			Publish:   pipeline.NewPublisher(cfg.Pipeline.ContactLink, runtime.Logger),
		},
		runtime.Storage,
		runtime.Logger,
	)

	return &Domain{
		Intake: intakeSystem,
		Batch:  batchSystem,
	}
}
