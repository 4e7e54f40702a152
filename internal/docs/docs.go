// Package docs registra el documento OpenAPI servido en /swagger/doc.json.
// Mantener alineado con las anotaciones godoc de los handlers.
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
        "/animals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Listado de animales",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "scope", "in": "query", "enum": ["active", "adoptable"]},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/animal"}}},
                    "401": {"description": "unauthorized"},
                    "422": {"description": "invalid status / scope"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Alta de animal",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/registerAnimalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/animal"}},
                    "400": {"description": "invalid json / name is required"},
                    "401": {"description": "unauthorized"},
                    "422": {"description": "invalid status / location_type"}
                }
            }
        },
        "/animals/{animalID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Detalle de animal",
                "parameters": [
                    {"type": "string", "name": "animalID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/animal"}},
                    "401": {"description": "unauthorized"},
                    "404": {"description": "animal not found"}
                }
            },
            "patch": {
                "description": "Salir de ADOPTED o DECEASED requiere confirm=true; sin él responde 409 y no aplica ningún campo.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Cambiar estado y/o ubicación",
                "parameters": [
                    {"type": "string", "name": "animalID", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/updateLifecycleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/animal"}},
                    "400": {"description": "invalid json"},
                    "401": {"description": "unauthorized"},
                    "404": {"description": "animal not found"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/confirmationRequired"}},
                    "422": {"description": "invalid status / location_type"}
                }
            }
        },
        "/animals/{animalID}/status-history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Historial de estado y ubicación",
                "parameters": [
                    {"type": "string", "name": "animalID", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/historyPage"}},
                    "401": {"description": "unauthorized"},
                    "404": {"description": "animal not found"}
                }
            }
        },
        "/meta/statuses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Catálogo de estados",
                "parameters": [{"type": "string", "name": "lang", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalogEntry"}}}}
            }
        },
        "/meta/location-types": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Catálogo de ubicaciones",
                "parameters": [{"type": "string", "name": "lang", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalogEntry"}}}}
            }
        },
        "/reports/census": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Censo por estado",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/census"}},
                    "401": {"description": "unauthorized"}
                }
            }
        }
    },
    "definitions": {
        "animal": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "species": {"type": "string"},
                "status": {"type": "string", "enum": ["QUARANTINE", "IN_CARE", "TRIAL", "ADOPTED", "DECEASED"]},
                "status_label": {"type": "string"},
                "location_type": {"type": "string", "enum": ["FACILITY", "FOSTER_HOME", "ADOPTER_HOME"]},
                "location_label": {"type": "string"},
                "location_note": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "registerAnimalRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "species": {"type": "string"},
                "status": {"type": "string"},
                "location_type": {"type": "string"},
                "location_note": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "updateLifecycleRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "location_type": {"type": "string"},
                "location_note": {"type": "string"},
                "reason": {"type": "string"},
                "confirm": {"type": "boolean"}
            }
        },
        "confirmationRequired": {
            "type": "object",
            "properties": {
                "requires_confirmation": {"type": "boolean"},
                "warning_code": {"type": "string", "enum": ["LEAVE_ADOPTED", "LEAVE_DECEASED"]},
                "message": {"type": "string"},
                "from_status": {"type": "string"},
                "to_status": {"type": "string"}
            }
        },
        "historyItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "field": {"type": "string", "enum": ["status", "location_type"]},
                "old_value": {"type": "string", "x-nullable": true},
                "new_value": {"type": "string", "x-nullable": true},
                "reason": {"type": "string"},
                "changed_by": {"type": "string", "x-nullable": true},
                "changed_at": {"type": "string", "format": "date-time"}
            }
        },
        "historyPage": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/historyItem"}},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "catalogEntry": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "label": {"type": "string"},
                "terminal": {"type": "boolean"}
            }
        },
        "census": {
            "type": "object",
            "properties": {
                "by_status": {"type": "object", "additionalProperties": {"type": "integer"}},
                "total": {"type": "integer"},
                "in_residence": {"type": "integer"},
                "ready_for_adoption": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Shelter Operations API",
	Description:      "Ciclo de vida de estado y ubicación de animales albergados.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
