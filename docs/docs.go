// Package docs contains the swagger spec for pkg/api, written by hand in the form swag generates.
// Regenerate with `swag init -g cmd/api/main.go -o docs` after changing
// any @-annotated handler comment.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Returns the health status of the API and controller",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service is healthy", "schema": {"$ref": "#/definitions/types.HealthResponse"}},
                    "503": {"description": "Service is degraded", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        },
        "/discovery/start": {
            "post": {
                "description": "Enables pairing mode to allow new devices to join",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["discovery"],
                "summary": "Start device discovery",
                "parameters": [
                    {"description": "Discovery duration (default 120 seconds, max 600)", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/types.StartDiscoveryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StartDiscoveryResponse"}},
                    "400": {"description": "Invalid duration", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Controller error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Request timed out", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/discovery/stop": {
            "post": {
                "description": "Disables pairing mode",
                "produces": ["application/json"],
                "tags": ["discovery"],
                "summary": "Stop device discovery",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StopDiscoveryResponse"}},
                    "500": {"description": "Controller error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Request timed out", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/discovery/events": {
            "get": {
                "description": "Server-Sent Events stream for real-time device join/leave notifications",
                "produces": ["text/event-stream"],
                "tags": ["discovery"],
                "summary": "Subscribe to discovery events",
                "responses": {
                    "200": {"description": "SSE event stream", "schema": {"type": "string"}}
                }
            }
        },
        "/devices": {
            "get": {
                "description": "Returns a list of all paired devices (excluding coordinator)",
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "List all devices",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ListDevicesResponse"}},
                    "500": {"description": "Controller error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Request timed out", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/devices/{id}": {
            "get": {
                "description": "Returns details for a specific device by IEEE address or friendly name",
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Get device details",
                "parameters": [
                    {"type": "string", "description": "Device IEEE address or friendly name", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DeviceResponse"}},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Controller error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Request timed out", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "patch": {
                "description": "Changes the friendly name of a device",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Rename a device",
                "parameters": [
                    {"type": "string", "description": "Device IEEE address or friendly name", "name": "id", "in": "path", "required": true},
                    {"description": "New friendly name", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.RenameDeviceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DeviceResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Controller error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Request timed out", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Removes a device from the network",
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Remove a device",
                "parameters": [
                    {"type": "string", "description": "Device IEEE address or friendly name", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "description": "Force removal even if device is offline", "name": "force", "in": "query"}
                ],
                "responses": {
                    "204": {"description": "Device removed successfully"},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Controller error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Request timed out", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/devices/{id}/state": {
            "get": {
                "description": "Returns the current state of a device",
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Get device state",
                "parameters": [
                    {"type": "string", "description": "Device IEEE address or friendly name", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StateResponse"}},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Device error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Request timed out", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Sets the state of a device using a free-form JSON object validated against the device's schema",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Set device state",
                "parameters": [
                    {"type": "string", "description": "Device IEEE address or friendly name", "name": "id", "in": "path", "required": true},
                    {"description": "State to set", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StateResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Device error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Request timed out", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "controller": {"type": "string"},
                "status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "types.DeviceWithState": {
            "type": "object",
            "properties": {
                "friendly_name": {"type": "string"},
                "ieee_address": {"type": "string"},
                "model": {"type": "string"},
                "state": {"type": "object"},
                "state_schema": {"type": "object"},
                "type": {"type": "string"},
                "vendor": {"type": "string"}
            }
        },
        "types.DeviceResponse": {
            "type": "object",
            "properties": {
                "device": {"$ref": "#/definitions/types.DeviceWithState"}
            }
        },
        "types.ListDevicesResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "devices": {"type": "array", "items": {"$ref": "#/definitions/types.DeviceWithState"}}
            }
        },
        "types.RenameDeviceRequest": {
            "type": "object",
            "required": ["friendly_name"],
            "properties": {
                "friendly_name": {"type": "string"}
            }
        },
        "types.StateResponse": {
            "type": "object",
            "properties": {
                "device": {"type": "string"},
                "state": {"type": "object"},
                "timestamp": {"type": "string"}
            }
        },
        "types.StartDiscoveryRequest": {
            "type": "object",
            "properties": {
                "duration_seconds": {"type": "integer"}
            }
        },
        "types.StartDiscoveryResponse": {
            "type": "object",
            "properties": {
                "duration_seconds": {"type": "integer"},
                "expires_at": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "types.StopDiscoveryResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "zigated API",
	Description:      "REST API for controlling ZiGate-connected Zigbee devices",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
