// Package docs registers the OpenAPI document served at /v1/docs/swagger.json.
// Regenerate with: swag init -g cmd/server/main.go
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.UserProfile"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/tutors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tutors"],
                "summary": "Search tutors",
                "parameters": [
                    {"type": "string", "description": "subject taught", "name": "subject", "in": "query"},
                    {"type": "string", "description": "day available", "name": "day", "in": "query"},
                    {"type": "number", "description": "minimum rating", "name": "minRating", "in": "query"},
                    {"type": "string", "description": "rating or name", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.TutorProfile"}}}
                }
            }
        },
        "/match": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tutors"],
                "summary": "Ask the advisor for the best tutor",
                "parameters": [
                    {"description": "optional subject", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.MatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Match"}},
                    "404": {"description": "no suitable tutor, try again", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "The caller's sessions grouped by status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SessionBuckets"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Book a session with a tutor",
                "parameters": [
                    {"description": "booking", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateSessionInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.SessionView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "One session the caller participates in",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SessionView"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/join": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Join an active session's meeting",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.JoinInfo"}},
                    "409": {"description": "session is not active", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/games/{kind}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Start a mini-game",
                "parameters": [
                    {"type": "string", "description": "matching, rpg or quiz", "name": "kind", "in": "path", "required": true},
                    {"description": "topic", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.StartGameInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/game.View"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.GameErrorResponse"}}
                }
            }
        },
        "/games/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Current state of a game",
                "parameters": [
                    {"type": "string", "description": "game id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/game.View"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/games/{id}/reload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Retry content generation for an idle game",
                "parameters": [
                    {"type": "string", "description": "game id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/game.View"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/games/matching/{id}/flip": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Flip a card",
                "parameters": [
                    {"type": "string", "description": "game id", "name": "id", "in": "path", "required": true},
                    {"description": "card id", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.FlipRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.FlipResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/games/rpg/{id}/choose": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Take a story branch",
                "parameters": [
                    {"type": "string", "description": "game id", "name": "id", "in": "path", "required": true},
                    {"description": "choice index", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ChooseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/game.View"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.GameErrorResponse"}}
                }
            }
        },
        "/games/rpg/{id}/finish": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "End an adventure",
                "parameters": [
                    {"type": "string", "description": "game id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/game.View"}}
                }
            }
        },
        "/games/quiz/{id}/submit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Submit quiz answers",
                "parameters": [
                    {"type": "string", "description": "game id", "name": "id", "in": "path", "required": true},
                    {"description": "answers by question index", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SubmitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/game.View"}}
                }
            }
        },
        "/games/leaderboard/{kind}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Best scores for a game kind",
                "parameters": [
                    {"type": "string", "description": "matching, rpg or quiz", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "description": "entries (default 10)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Standings"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.GameErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}},
                "game": {"$ref": "#/definitions/game.View"}
            }
        },
        "handler.MatchRequest": {
            "type": "object",
            "properties": {"subject": {"type": "string"}}
        },
        "handler.FlipRequest": {
            "type": "object",
            "properties": {"card": {"type": "integer"}}
        },
        "handler.FlipResponse": {
            "type": "object",
            "properties": {
                "game": {"$ref": "#/definitions/game.View"},
                "result": {
                    "type": "object",
                    "properties": {
                        "matched": {"type": "boolean"},
                        "mismatch": {"type": "boolean"},
                        "completed": {"type": "boolean"}
                    }
                }
            }
        },
        "handler.ChooseRequest": {
            "type": "object",
            "properties": {"choice": {"type": "integer"}}
        },
        "handler.SubmitRequest": {
            "type": "object",
            "properties": {"answers": {"type": "object", "additionalProperties": {"type": "string"}}}
        },
        "service.CreateSessionInput": {
            "type": "object",
            "required": ["tutorId", "subject", "topic", "startTime", "durationMinutes"],
            "properties": {
                "tutorId": {"type": "string"},
                "subject": {"type": "string"},
                "topic": {"type": "string"},
                "startTime": {"type": "string", "format": "date-time"},
                "durationMinutes": {"type": "integer", "maximum": 480, "minimum": 1}
            }
        },
        "service.StartGameInput": {
            "type": "object",
            "required": ["topic"],
            "properties": {
                "topic": {"type": "string", "maxLength": 200},
                "count": {"type": "integer", "maximum": 20, "minimum": 1}
            }
        },
        "service.Match": {
            "type": "object",
            "properties": {
                "tutor": {"$ref": "#/definitions/model.TutorProfile"},
                "rationale": {"type": "string"}
            }
        },
        "cache.LeaderboardEntry": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "name": {"type": "string"},
                "score": {"type": "integer"},
                "rank": {"type": "integer"}
            }
        },
        "service.Standings": {
            "type": "object",
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/cache.LeaderboardEntry"}},
                "me": {"$ref": "#/definitions/cache.LeaderboardEntry"}
            }
        },
        "game.View": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string", "enum": ["matching", "rpg", "quiz"]},
                "phase": {"type": "string", "enum": ["idle", "loading", "ready", "resolving", "scored"]},
                "state": {"type": "object"}
            }
        },
        "model.JoinInfo": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "meetingId": {"type": "string"},
                "url": {"type": "string"},
                "role": {"type": "string", "enum": ["host", "attendee"]},
                "signature": {"type": "string"}
            }
        },
        "model.SessionView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "tutorId": {"type": "string"},
                "studentId": {"type": "string"},
                "participants": {"type": "array", "items": {"type": "string"}},
                "subject": {"type": "string"},
                "topic": {"type": "string"},
                "startTime": {"type": "string", "format": "date-time"},
                "endTime": {"type": "string", "format": "date-time"},
                "createdAt": {"type": "string", "format": "date-time"},
                "zoomMeetingId": {"type": "string"},
                "zoomJoinUrl": {"type": "string"},
                "zoomStartUrl": {"type": "string"},
                "status": {"type": "string", "enum": ["upcoming", "active", "completed"]}
            }
        },
        "model.SessionBuckets": {
            "type": "object",
            "properties": {
                "active": {"type": "array", "items": {"$ref": "#/definitions/model.SessionView"}},
                "upcoming": {"type": "array", "items": {"$ref": "#/definitions/model.SessionView"}},
                "completed": {"type": "array", "items": {"$ref": "#/definitions/model.SessionView"}}
            }
        },
        "model.TutorProfile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "availability": {"type": "array", "items": {"type": "string"}},
                "rating": {"type": "number"},
                "bio": {"type": "string"},
                "hourlyRate": {"type": "number"},
                "experienceYears": {"type": "integer"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "model.UserProfile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["student", "tutor"]},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "availability": {"type": "array", "items": {"type": "string"}},
                "gradeLevel": {"type": "string"},
                "learningStyle": {"type": "string"},
                "goals": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "studyhub API",
	Description:      "Tutoring sessions, meeting provisioning, tutor matching and study games",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
