// Package docs is generated by swaggo/swag from the handler annotations.
// Regenerate with: swag init -g cmd/bimcall_backend/main.go -o cmd/docs
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
        "/me/permissions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["permissions"],
                "summary": "Get the caller's permission snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PermissionsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Unknown user", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Role store unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/permissions/check": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["permissions"],
                "summary": "Check one action",
                "parameters": [
                    {"description": "Action and optional project", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CheckPermissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CheckPermissionResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/projects/{projectID}/permissions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["permissions"],
                "summary": "Get the caller's permissions inside a project",
                "parameters": [
                    {"type": "string", "description": "Project ID", "name": "projectID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProjectPermissionsResponse"}}
                }
            }
        },
        "/projects/{projectID}/members/{userID}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Assign a project role",
                "parameters": [
                    {"type": "string", "description": "Project ID", "name": "projectID", "in": "path", "required": true},
                    {"type": "string", "description": "User ID", "name": "userID", "in": "path", "required": true},
                    {"description": "Project role", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AssignProjectRoleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProjectMemberResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["projects"],
                "summary": "Remove a project membership",
                "parameters": [
                    {"type": "string", "description": "Project ID", "name": "projectID", "in": "path", "required": true},
                    {"type": "string", "description": "User ID", "name": "userID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Membership not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/{entityType}/{entityID}/close": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["closure"],
                "summary": "Close a meeting or series",
                "parameters": [
                    {"enum": ["meetings", "series"], "type": "string", "description": "meetings or series", "name": "entityType", "in": "path", "required": true},
                    {"type": "string", "description": "Meeting or series ID", "name": "entityID", "in": "path", "required": true},
                    {"description": "Closure decision", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CloseEntityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClosureResultResponse"}},
                    "400": {"description": "Invalid input or invalid target", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Entity or target not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Already closed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Nothing was applied, retry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/{entityType}/{entityID}/close-targets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["closure"],
                "summary": "List move targets",
                "parameters": [
                    {"enum": ["meetings", "series"], "type": "string", "description": "meetings or series", "name": "entityType", "in": "path", "required": true},
                    {"type": "string", "description": "Meeting or series ID", "name": "entityID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CloseTargetsResponse"}}
                }
            }
        },
        "/{entityType}/{entityID}/close-preview": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["closure"],
                "summary": "Preview a close",
                "parameters": [
                    {"enum": ["meetings", "series"], "type": "string", "description": "meetings or series", "name": "entityType", "in": "path", "required": true},
                    {"type": "string", "description": "Meeting or series ID", "name": "entityID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClosurePreviewResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "retryable": {"type": "boolean"}}
        },
        "dto.PermissionsResponse": {"type": "object", "additionalProperties": true},
        "dto.ProjectPermissionsResponse": {
            "type": "object",
            "properties": {
                "projectID": {"type": "string"},
                "canAccess": {"type": "boolean"},
                "role": {"type": "string"},
                "allowedActions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.CheckPermissionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {"action": {"type": "string"}, "projectID": {"type": "string"}}
        },
        "dto.CheckPermissionResponse": {
            "type": "object",
            "properties": {"action": {"type": "string"}, "projectID": {"type": "string"}, "allowed": {"type": "boolean"}}
        },
        "dto.AssignProjectRoleRequest": {
            "type": "object",
            "required": ["role"],
            "properties": {"role": {"type": "string"}}
        },
        "dto.ProjectMemberResponse": {
            "type": "object",
            "properties": {
                "projectID": {"type": "string"},
                "userID": {"type": "string"},
                "role": {"type": "string"},
                "lastUpdatedAt": {"type": "string"},
                "lastUpdatedBy": {"type": "string"}
            }
        },
        "dto.EntityRefRequest": {
            "type": "object",
            "required": ["id", "type"],
            "properties": {"id": {"type": "string"}, "type": {"type": "string"}}
        },
        "dto.EntityRefResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "type": {"type": "string"}}
        },
        "dto.CloseEntityRequest": {
            "type": "object",
            "required": ["mode"],
            "properties": {"mode": {"type": "string"}, "target": {"$ref": "#/definitions/dto.EntityRefRequest"}}
        },
        "dto.ClosureResultResponse": {
            "type": "object",
            "properties": {
                "entityType": {"type": "string"},
                "entityID": {"type": "string"},
                "newStatus": {"type": "string"},
                "closedAt": {"type": "string"},
                "mode": {"type": "string"},
                "affectedPointCount": {"type": "integer"},
                "target": {"$ref": "#/definitions/dto.EntityRefResponse"},
                "invalidationKeys": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.EntityResponse": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "id": {"type": "string"},
                "projectID": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "string"},
                "closedAt": {"type": "string"}
            }
        },
        "dto.CloseTargetsResponse": {
            "type": "object",
            "properties": {
                "meetings": {"type": "array", "items": {"$ref": "#/definitions/dto.EntityResponse"}},
                "series": {"type": "array", "items": {"$ref": "#/definitions/dto.EntityResponse"}}
            }
        },
        "dto.ClosurePreviewResponse": {
            "type": "object",
            "properties": {
                "entity": {"$ref": "#/definitions/dto.EntityResponse"},
                "openPointCount": {"type": "integer"},
                "needsDecision": {"type": "boolean"},
                "canClose": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "BimCall Backend API",
	Description:      "Permission resolution and meeting closure for construction-project coordination.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
