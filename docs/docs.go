// Package docs holds the OpenAPI description served under /swagger when running locally.
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
        "/api/rooms": {
            "post": {
                "description": "Resolves the losing team of the match and opens a voting room for it",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Create a room",
                "parameters": [
                    {"type": "string", "description": "Caller fingerprint", "name": "X-User-Fingerprint", "in": "header", "required": true},
                    {"description": "Room settings", "name": "room", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateRoomRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Invalid input, unknown match or password taken", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Missing fingerprint", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "500": {"description": "Room could not be created", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/api/rooms/{password}": {
            "get": {
                "description": "Returns the room as seen by the caller. Ballot counts are hidden until voting finishes",
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Get a room",
                "parameters": [
                    {"type": "string", "description": "Room password", "name": "password", "in": "path", "required": true},
                    {"type": "string", "description": "Caller fingerprint", "name": "X-User-Fingerprint", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/api/rooms/{password}/start": {
            "post": {
                "description": "Marks the caller as a participant. Calling it again keeps earlier votes",
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Start voting",
                "parameters": [
                    {"type": "string", "description": "Room password", "name": "password", "in": "path", "required": true},
                    {"type": "string", "description": "Caller fingerprint", "name": "X-User-Fingerprint", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Room already finished", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Missing fingerprint", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/api/rooms/{password}/vote": {
            "post": {
                "description": "Casts one ballot for a candidate slot between 1 and 5",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Cast a vote",
                "parameters": [
                    {"type": "string", "description": "Room password", "name": "password", "in": "path", "required": true},
                    {"type": "string", "description": "Caller fingerprint", "name": "X-User-Fingerprint", "in": "header", "required": true},
                    {"description": "Ballot", "name": "vote", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Vote rejected", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Missing fingerprint", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/api/rooms/{password}/reset": {
            "post": {
                "description": "Clears every ballot and participant and reopens the room. Creator only",
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Reset voting",
                "parameters": [
                    {"type": "string", "description": "Room password", "name": "password", "in": "path", "required": true},
                    {"type": "string", "description": "Caller fingerprint", "name": "X-User-Fingerprint", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Missing fingerprint", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "403": {"description": "Caller is not the creator", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/api/rooms/{password}/order": {
            "post": {
                "description": "Stores a fresh random order of the five candidates. Creator only",
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Generate a speaking order",
                "parameters": [
                    {"type": "string", "description": "Room password", "name": "password", "in": "path", "required": true},
                    {"type": "string", "description": "Caller fingerprint", "name": "X-User-Fingerprint", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Missing fingerprint", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "403": {"description": "Caller is not the creator", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/api/rooms/{password}/ws": {
            "get": {
                "description": "Upgrades to a websocket that receives the caller's room view after every change",
                "tags": ["rooms"],
                "summary": "Watch a room",
                "parameters": [
                    {"type": "string", "description": "Room password", "name": "password", "in": "path", "required": true},
                    {"type": "string", "description": "Caller fingerprint, for clients that cannot set headers", "name": "fingerprint", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "models.CreateRoomRequest": {
            "type": "object",
            "required": ["match_id", "username"],
            "properties": {
                "match_id": {"type": "integer"},
                "room_password": {"type": "string"},
                "max_votes": {"type": "integer"},
                "votes_per_user": {"type": "integer"},
                "username": {"type": "string"},
                "show_only_winner_votes": {"type": "boolean"}
            }
        },
        "models.VoteRequest": {
            "type": "object",
            "required": ["player_index"],
            "properties": {
                "player_index": {"type": "integer"},
                "username": {"type": "string"}
            }
        },
        "models.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Fingerprint": {"type": "apiKey", "name": "X-User-Fingerprint", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "Catch The Mole API",
	Description:      "Backend API for post-match \"find the mole\" voting rooms",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
