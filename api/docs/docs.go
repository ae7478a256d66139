// Package docs registers the OpenAPI description of the HTTP API with swag.
// Regenerate with `swag init -g cmd/localmind/docs.go -o api/docs` after
// changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/chat": {
            "post": {
                "description": "Returns a ChatResponse, or with stream=true NDJSON TokenLine objects followed by a final ChatResponse line.",
                "consumes": ["application/json"],
                "produces": ["application/json", "application/x-ndjson"],
                "tags": ["chat"],
                "summary": "Generate a reply",
                "parameters": [{"description": "Chat request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ChatRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ChatResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/chat/cancel": {
            "post": {
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Cancel the running generation",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CancelResponse"}}}
            }
        },
        "/init": {
            "post": {
                "description": "Idempotent; returns the status once the model is Ready.",
                "produces": ["application/json"],
                "tags": ["lifecycle"],
                "summary": "Extract and load the bundled model",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/unload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["lifecycle"],
                "summary": "Unload the model",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "200 once the model is loaded and Ready, 503 otherwise.",
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "ready", "schema": {"type": "string"}}, "503": {"description": "not ready", "schema": {"type": "string"}}}
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Lifecycle and scheduler status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        },
        "/telemetry": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Aggregate generation telemetry",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TelemetryResponse"}}}
            }
        }
    },
    "definitions": {
        "types.ChatMessage": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "example": "user"},
                "content": {"type": "string", "example": "What's the weather like on Mars?"}
            }
        },
        "types.Persona": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Nova"},
                "instructions": {"type": "string", "example": "Answer in one short paragraph."}
            }
        },
        "types.ChatRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string", "example": "Summarise my last note."},
                "persona": {"$ref": "#/definitions/types.Persona"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/types.ChatMessage"}},
                "stream": {"type": "boolean", "example": false}
            }
        },
        "types.GenerationMetadata": {
            "type": "object",
            "properties": {
                "model_id": {"type": "string", "example": "smollm2-360m-instruct-q8"},
                "threads": {"type": "integer", "example": 4},
                "input_tokens": {"type": "integer", "example": 212},
                "output_tokens": {"type": "integer", "example": 48},
                "duration_ms": {"type": "integer", "example": 2310},
                "tokens_per_second": {"type": "number", "example": 20.8},
                "task_id": {"type": "string"}
            }
        },
        "types.ChatResponse": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "done": {"type": "boolean"},
                "metadata": {"$ref": "#/definitions/types.GenerationMetadata"}
            }
        },
        "types.CancelResponse": {
            "type": "object",
            "properties": {"cancelled": {"type": "boolean", "example": true}}
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "model not ready"},
                "code": {"type": "integer", "example": 503}
            }
        },
        "types.ModelDetails": {
            "type": "object",
            "properties": {
                "model_id": {"type": "string"},
                "path": {"type": "string"},
                "context_size": {"type": "integer", "example": 2048},
                "vocab_size": {"type": "integer", "example": 49152},
                "threads": {"type": "integer", "example": 4},
                "accelerator": {"type": "boolean"},
                "system_info": {"type": "string"}
            }
        },
        "types.SchedulerStatus": {
            "type": "object",
            "properties": {
                "workers": {"type": "integer"},
                "busy_workers": {"type": "integer"},
                "pending": {"type": "integer"},
                "active": {"type": "integer"},
                "submitted": {"type": "integer"},
                "completed": {"type": "integer"},
                "failed": {"type": "integer"},
                "cancelled": {"type": "integer"},
                "timed_out": {"type": "integer"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "ready"},
                "in_flight": {"type": "boolean"},
                "last_error": {"type": "string"},
                "model": {"$ref": "#/definitions/types.ModelDetails"},
                "scheduler": {"$ref": "#/definitions/types.SchedulerStatus"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"},
                "loads_total": {"type": "integer"},
                "generations_total": {"type": "integer"}
            }
        },
        "types.TelemetryResponse": {
            "type": "object",
            "properties": {
                "has_data": {"type": "boolean"},
                "count": {"type": "integer"},
                "mean_duration_ms": {"type": "number"},
                "min_duration_ms": {"type": "number"},
                "max_duration_ms": {"type": "number"},
                "mean_tokens_per_second": {"type": "number"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "localmind API",
	Description:      "Local control surface for the on-device model and inference scheduler.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
