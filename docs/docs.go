// Package docs registers the OpenAPI document served at /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "BracketIQ"},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "API root",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/health/db": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Database health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object"}}
                }
            }
        },
        "/matchups": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matchups"],
                "summary": "List historical matchups",
                "parameters": [
                    {"type": "integer", "description": "First year (inclusive); alone it selects that year only", "name": "start_year", "in": "query"},
                    {"type": "integer", "description": "Last year (inclusive); used only with start_year", "name": "end_year", "in": "query"},
                    {"type": "string", "description": "Case-insensitive substring of either team's name", "name": "team", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/matchups/year/{year}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matchups"],
                "summary": "Historical matchups for one year",
                "parameters": [
                    {"type": "integer", "description": "Tournament year", "name": "year", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/matchups/{year}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matchups"],
                "summary": "Matchup differential",
                "parameters": [
                    {"type": "integer", "description": "Season year", "name": "year", "in": "path", "required": true},
                    {"type": "string", "description": "Team name (exact)", "name": "teamA", "in": "query", "required": true},
                    {"type": "string", "description": "Team name (exact)", "name": "teamB", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/matchups/{year}/{round}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["bracket"],
                "summary": "Bracket round",
                "parameters": [
                    {"type": "integer", "description": "Tournament year", "name": "year", "in": "path", "required": true},
                    {"enum": ["round64", "round32"], "type": "string", "description": "Round", "name": "round", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "List team statistics",
                "parameters": [
                    {"type": "integer", "description": "First year (inclusive); alone it selects that year only", "name": "start_year", "in": "query"},
                    {"type": "integer", "description": "Last year (inclusive); used only with start_year", "name": "end_year", "in": "query"},
                    {"type": "string", "description": "Case-insensitive team name substring", "name": "team", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/stats/year/{year}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Team statistics for one year",
                "parameters": [
                    {"type": "integer", "description": "Tournament year", "name": "year", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "detail": {"type": "string"},
                        "message": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "March Madness Data API",
	Description:      "Tournament team statistics, historical matchups with precomputed differentials, and bracket rounds enriched with matchup differentials.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
