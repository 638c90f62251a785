package api

import (
	"github.com/jmaxwell/sellforge/internal/config"
	"github.com/jmaxwell/sellforge/pkg/openapi"
)

// buildSpec assembles the OpenAPI document served at /openapi.json.
func buildSpec(cfg *config.Config) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"RegisterResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"filename":   {Type: "string"},
				"identifier": {Type: "string", Description: "Canonical item identifier", Example: "2025-001"},
				"error":      {Type: "string", Description: "Per-file registration failure"},
			},
		},
		"ValidationResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"passed":  {Type: "boolean"},
				"missing": {Type: "object", Description: "Identifiers without a companion entry, per companion set"},
				"extra":   {Type: "object", Description: "Companion entries without a matching item, per companion set"},
				"reasons": {Type: "array", Items: &openapi.Schema{Type: "string"}},
			},
		},
		"Toggles": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"images": {Type: "boolean", Description: "Expect a companion image per item"},
				"tags":   {Type: "boolean", Description: "Expect a tag table row per item"},
			},
		},
		"Progress": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":        {Type: "string", Format: "uuid"},
				"status":    {Type: "string", Enum: []any{"awaiting-login", "processing", "completed", "cancelled", "failed"}},
				"total":     {Type: "integer"},
				"completed": {Type: "integer"},
				"fraction":  {Type: "number"},
				"current":   {Type: "string", Description: "Identifier of the most recently finished item"},
			},
		},
		"BatchResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"successes": {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"failures": {Type: "array", Items: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"filename": {Type: "string"},
						"reason":   {Type: "string"},
					},
				}},
			},
		},
	})

	multipart := &openapi.RequestBody{
		Required: true,
		Content: map[string]*openapi.MediaType{
			"multipart/form-data": {Schema: &openapi.Schema{Type: "object"}},
		},
	}

	registered := openapi.ResponseJSON("Per-file registration outcomes", "RegisterResult")

	spec.Paths["/intake"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Current intake state",
			Tags:    []string{"intake"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Items, companions, and toggles"},
			},
		},
		Delete: &openapi.Operation{
			Summary: "Reset intake for a fresh batch",
			Tags:    []string{"intake"},
			Responses: map[int]*openapi.Response{
				204: {Description: "Intake cleared"},
			},
		},
	}
	spec.Paths["/intake/documents"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Upload primary disclosure documents",
			Tags:        []string{"intake"},
			RequestBody: multipart,
			Responses: map[int]*openapi.Response{
				201: registered,
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}
	spec.Paths["/intake/images"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Upload companion images",
			Tags:        []string{"intake"},
			RequestBody: multipart,
			Responses: map[int]*openapi.Response{
				201: registered,
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}
	spec.Paths["/intake/tags"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Upload a CSV or XLSX tag table",
			Tags:        []string{"intake"},
			RequestBody: multipart,
			Responses: map[int]*openapi.Response{
				201: {Description: "Row count"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}
	spec.Paths["/intake/toggles"] = &openapi.PathItem{
		Put: &openapi.Operation{
			Summary:     "Update companion toggles",
			Tags:        []string{"intake"},
			RequestBody: openapi.RequestBodyJSON("Toggles", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Re-validated gate", "ValidationResult"),
			},
		},
	}
	spec.Paths["/intake/validation"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Matching gate result",
			Tags:    []string{"intake"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Gate result", "ValidationResult"),
			},
		},
	}

	spec.Paths["/runs"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Start a batch run",
			Description: "Requires a passing validation gate; one run may be active at a time.",
			Tags:        []string{"runs"},
			Responses: map[int]*openapi.Response{
				202: openapi.ResponseJSON("Run accepted", "Progress"),
				409: openapi.ResponseRef("Conflict"),
				422: {Description: "Gate has not passed or no items registered"},
			},
		},
	}
	spec.Paths["/runs/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Run status and progress",
			Tags:       []string{"runs"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Run ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Progress", "Progress"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
	spec.Paths["/runs/{id}/cancel"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Request cooperative cancellation",
			Description: "The item in flight finishes before cancellation takes effect.",
			Tags:        []string{"runs"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Run ID")},
			Responses: map[int]*openapi.Response{
				202: {Description: "Cancellation requested"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
	spec.Paths["/runs/{id}/result"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Final batch result",
			Tags:       []string{"runs"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Run ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Batch result", "BatchResult"),
				404: openapi.ResponseRef("NotFound"),
				409: {Description: "Run has not finished"},
			},
		},
	}
	spec.Paths["/runs/{id}/archive"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Download the sell sheet archive",
			Tags:       []string{"runs"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Run ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseBinary("sell_sheets.zip", "application/zip"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	return openapi.MarshalJSON(spec)
}
