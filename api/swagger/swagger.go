package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Litrix API",
        "description": "Research management service: role resolution, citation metrics, invitations and live notifications",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token rotation, invitation-based registration"},
        {"name": "Accounts", "description": "Account administration across role partitions"},
        {"name": "Faculty", "description": "Faculty profiles and fuzzy search"},
        {"name": "Publications", "description": "Publication listings and ingest"},
        {"name": "Analytics", "description": "Citation metrics"},
        {"name": "Dashboards", "description": "Role-scoped landing views"},
        {"name": "Notifications", "description": "Backlog and live feed"},
        {"name": "Invitations", "description": "Invitation lifecycle"},
        {"name": "Reports", "description": "Asynchronous CSV/PDF exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate token pair",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Complete an invitation",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Invitation already consumed"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Resolve the caller's identity",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Identity"}},
                    "401": {"description": "No role found"}
                }
            }
        },
        "/accounts": {
            "get": {
                "tags": ["Accounts"],
                "summary": "List accounts",
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Accounts"],
                "summary": "Create account",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/accounts/{id}/role": {
            "put": {
                "tags": ["Accounts"],
                "summary": "Move account to another role partition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Account already holds that role"}
                }
            }
        },
        "/faculty/search": {
            "get": {
                "tags": ["Faculty"],
                "summary": "Fuzzy-search faculty by name",
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "college", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/{scholarId}/publications": {
            "get": {
                "tags": ["Publications"],
                "summary": "List a faculty member's publications",
                "parameters": [
                    {"name": "scholarId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/analytics/departments": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Department citation metrics",
                "parameters": [
                    {"name": "college", "in": "query", "required": true, "type": "string"},
                    {"name": "department", "in": "query", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DepartmentMetrics"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboards"],
                "summary": "Role-scoped dashboard",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notifications/stream": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Live notification feed (SSE)",
                "produces": ["text/event-stream"],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/invitations": {
            "post": {
                "tags": ["Invitations"],
                "summary": "Invite an account",
                "responses": {
                    "202": {"description": "Accepted; poll the record for the dispatch outcome"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a department metrics export",
                "responses": {
                    "202": {"description": "Accepted; poll the job until the download token appears"}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a rendered report",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Identity": {
            "type": "object",
            "properties": {
                "account_id": {"type": "string"},
                "role": {"type": "string"},
                "email": {"type": "string"},
                "display_name": {"type": "string"},
                "college": {"type": "string"},
                "department": {"type": "string"},
                "scholar_id": {"type": "string"}
            }
        },
        "DepartmentMetrics": {
            "type": "object",
            "properties": {
                "college": {"type": "string"},
                "department": {"type": "string"},
                "total_researchers": {"type": "integer"},
                "total_publications": {"type": "integer"},
                "total_citations": {"type": "integer"},
                "percent_published": {"type": "number"},
                "avg_publications_per_researcher": {"type": "number"},
                "avg_citations_per_publication": {"type": "number"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
