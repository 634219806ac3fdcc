// Package docs registers the OpenAPI document served at /api/v1/swagger.json.
// Handler annotations are the source; regenerate with `swag init`.
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
        "/api/v1/health": {
            "get": {"tags": ["System"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/campaigns": {
            "post": {"tags": ["Campaigns"], "summary": "Create Campaign", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Campaign created successfully"}, "400": {"description": "Validation error"}}},
            "get": {"tags": ["Campaigns"], "summary": "List Campaigns", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/campaigns/{uuid}": {
            "get": {"tags": ["Campaigns"], "summary": "Get Campaign", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Campaign not found"}}},
            "delete": {"tags": ["Campaigns"], "summary": "Delete Campaign", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/campaigns/{uuid}/requirements": {
            "put": {"tags": ["Campaigns"], "summary": "Update Campaign Requirements", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Requirements can no longer change"}}}
        },
        "/api/v1/campaigns/{uuid}/progress": {
            "get": {"tags": ["Campaigns"], "summary": "Get Campaign Progress", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/campaigns/{uuid}/stages/{stage}/advance": {
            "post": {"tags": ["Campaigns"], "summary": "Advance Campaign Stage", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}
        },
        "/api/v1/campaigns/{uuid}/suggestions": {
            "get": {"tags": ["Matching"], "summary": "Suggest Creators", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/campaigns/{uuid}/suggestions/export": {
            "get": {"tags": ["Matching"], "summary": "Export Suggestions", "security": [{"BearerAuth": []}], "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "XLSX workbook"}}}
        },
        "/api/v1/campaigns/{uuid}/suggestions/{creator_uuid}": {
            "get": {"tags": ["Matching"], "summary": "Creator Match Breakdown", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/campaigns/{uuid}/invitations": {
            "post": {"tags": ["Invitations"], "summary": "Send Invitation", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Creator already invited"}}},
            "get": {"tags": ["Invitations"], "summary": "List Campaign Invitations", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/campaigns/{uuid}/submissions": {
            "get": {"tags": ["Content"], "summary": "List Submissions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/submissions/{uuid}/review": {
            "post": {"tags": ["Content"], "summary": "Review Content", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/creator/invitations": {
            "get": {"tags": ["Invitations"], "summary": "List My Invitations", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/creator/invitations/{uuid}/respond": {
            "post": {"tags": ["Invitations"], "summary": "Respond To Invitation", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Invitation already answered"}}}
        },
        "/api/v1/creator/campaigns/{uuid}/submissions": {
            "post": {"tags": ["Content"], "summary": "Submit Content", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/notifications": {
            "get": {"tags": ["Notifications"], "summary": "List Notifications", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/notifications/{uuid}/read": {
            "post": {"tags": ["Notifications"], "summary": "Mark Notification Read", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Collab Market API",
	Description:      "Brand and creator collaboration marketplace: creator matching, invitations and campaign stages.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
