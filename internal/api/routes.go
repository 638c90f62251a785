package api

import (
	"net/http"

	"github.com/jmaxwell/sellforge/internal/config"
	"github.com/jmaxwell/sellforge/pkg/openapi"
	"github.com/jmaxwell/sellforge/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
	spec []byte,
) {
	groups := []routes.Group{
		domain.Intake.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Batch.Handler().Routes(),
	}

	if runtime.Storage != nil {
		sh := newStorageHandler(runtime.Storage, runtime.Logger, cfg.Storage.MaxListSize)
		groups = append(groups, sh.routes())
	}

	routes.Register(mux, groups...)

	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))
}
