package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "JanMitra Grievance API",
        "description": "Civic grievance lifecycle, event ledger, and SLA tracking core",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Grievances", "description": "Grievance submission and lifecycle"},
        {"name": "Ledger", "description": "Append-only grievance event ledger"},
        {"name": "Support", "description": "Citizen support signals"},
        {"name": "Departments", "description": "Department routing and health"},
        {"name": "Dashboard", "description": "Public aggregate summary"},
        {"name": "Admin", "description": "SLA sweep and report export"}
    ],
    "paths": {
        "/grievances": {
            "get": {
                "tags": ["Grievances"],
                "summary": "List grievances",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "department_id", "in": "query", "type": "string"},
                    {"name": "ward", "in": "query", "type": "string"},
                    {"name": "sla_status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Grievances"],
                "summary": "Submit a grievance",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitGrievanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Grievance"}},
                    "400": {"description": "Validation failed"},
                    "401": {"description": "Missing or invalid token"}
                }
            }
        },
        "/grievances/{id}": {
            "get": {
                "tags": ["Grievances"],
                "summary": "Fetch a grievance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Grievance"}},
                    "403": {"description": "Not visible to caller"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/grievances/{id}/sla": {
            "get": {
                "tags": ["Grievances"],
                "summary": "SLA snapshot for a grievance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SLASnapshot"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/grievances/{id}/events": {
            "get": {
                "tags": ["Ledger"],
                "summary": "List ledger events for a grievance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not visible to caller"}
                }
            },
            "post": {
                "tags": ["Ledger"],
                "summary": "Append a ledger event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AppendEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/GrievanceEvent"}},
                    "400": {"description": "Unknown event type"},
                    "403": {"description": "Role cannot author this event type"},
                    "409": {"description": "Duplicate event"}
                }
            }
        },
        "/grievances/{id}/status": {
            "patch": {
                "tags": ["Grievances"],
                "summary": "Apply a status transition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Grievance"}},
                    "403": {"description": "Caller is not staff"},
                    "409": {"description": "Transition not allowed or concurrent update"}
                }
            }
        },
        "/grievances/{id}/reopen": {
            "post": {
                "tags": ["Grievances"],
                "summary": "Reopen a closed grievance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/ReopenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Grievance"}},
                    "403": {"description": "Caller is not the owner"},
                    "409": {"description": "Grievance is not closed"}
                }
            }
        },
        "/grievances/{id}/support": {
            "post": {
                "tags": ["Support"],
                "summary": "Add a support signal",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Owner cannot support own grievance"},
                    "409": {"description": "Already supported"}
                }
            },
            "delete": {
                "tags": ["Support"],
                "summary": "Withdraw a support signal",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "No signal to withdraw"}
                }
            }
        },
        "/departments": {
            "get": {
                "tags": ["Departments"],
                "summary": "List departments",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/departments/{id}": {
            "get": {
                "tags": ["Departments"],
                "summary": "Fetch a department",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregate grievance statistics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/reports/grievances": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export grievances as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "department_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Requires department or system admin"}
                }
            }
        },
        "/admin/sla/sweep": {
            "post": {
                "tags": ["Admin"],
                "summary": "Run the SLA breach sweep once",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Requires system admin"}
                }
            }
        }
    },
    "definitions": {
        "SubmitGrievanceRequest": {
            "type": "object",
            "required": ["category", "title", "description"],
            "properties": {
                "category": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "address": {"type": "string"},
                "ward": {"type": "string"},
                "pincode": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "privacy": {"type": "string", "enum": ["public", "private"]}
            }
        },
        "StatusChangeRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string"},
                "note": {"type": "string"},
                "officer_id": {"type": "string"},
                "department_id": {"type": "string"}
            }
        },
        "ReopenRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "AppendEventRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "Grievance": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "JM-2025-000123"},
                "category": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string"},
                "sla_deadline_at": {"type": "string", "format": "date-time"},
                "sla_status": {"type": "string"},
                "department_id": {"type": "string"},
                "officer_id": {"type": "string"},
                "support_count": {"type": "integer"},
                "reopen_count": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"},
                "closed_at": {"type": "string", "format": "date-time"}
            }
        },
        "GrievanceEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "grievance_id": {"type": "string"},
                "type": {"type": "string"},
                "actor_id": {"type": "string"},
                "actor_role": {"type": "string"},
                "payload": {"type": "object"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "SLASnapshot": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["on_track", "at_risk", "breached"]},
                "overdue_days": {"type": "integer"},
                "overdue_hours": {"type": "integer"},
                "progress_percent": {"type": "number"}
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
