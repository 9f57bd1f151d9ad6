package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Church Admin API",
        "description": "Church back-office API: offerings, PIX payments and donation receipts",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Auth",
            "description": "Login and permission discovery"
        },
        {
            "name": "Offerings",
            "description": "Offering entry, listing and export"
        },
        {
            "name": "PIX",
            "description": "PIX charges, webhook and reconciliation"
        },
        {
            "name": "Donations",
            "description": "Donations, receipts and annual reports"
        },
        {
            "name": "System",
            "description": "Health and metrics"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Readiness check against Postgres and Redis",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is unreachable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "Metrics"
                    }
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Login",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Access token issued",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Account inactive",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/permissions": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Current user and granted permissions",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "User info",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/offerings": {
            "get": {
                "tags": [
                    "Offerings"
                ],
                "summary": "List offerings",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Page number"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Page size (max 100)"
                    },
                    {
                        "name": "sort",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "date, amount, origin, method or createdAt"
                    },
                    {
                        "name": "order",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "asc or desc"
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Matches description, notes or PIX tx id"
                    },
                    {
                        "name": "origin",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "CULTO, CAMPANHA, OFERTA or OUTRO"
                    },
                    {
                        "name": "method",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "CASH, CARD, PIX, TRANSFER or CHECK"
                    },
                    {
                        "name": "pixStatus",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "PENDING, PAID, EXPIRED or CANCELLED"
                    },
                    {
                        "name": "serviceId",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Service id"
                    },
                    {
                        "name": "campusId",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Campus id"
                    },
                    {
                        "name": "amountMin",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Centavos"
                    },
                    {
                        "name": "amountMax",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Centavos"
                    },
                    {
                        "name": "dateFrom",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "YYYY-MM-DD or RFC3339"
                    },
                    {
                        "name": "dateTo",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "YYYY-MM-DD or RFC3339, a bare date covers the whole day"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Offerings with summary",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Record a non-PIX offering",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateOfferingRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/offerings/{id}": {
            "get": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Get offering",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Offering",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/offerings/export": {
            "get": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Export offerings as CSV or PDF",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "csv or pdf"
                    },
                    {
                        "name": "dateFrom",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "YYYY-MM-DD or RFC3339"
                    },
                    {
                        "name": "dateTo",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "YYYY-MM-DD or RFC3339, a bare date covers the whole day"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File download"
                    },
                    "400": {
                        "description": "Invalid format",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/offerings/pix": {
            "get": {
                "tags": [
                    "PIX"
                ],
                "summary": "List PIX payments",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "PENDING, PAID, EXPIRED or CANCELLED"
                    },
                    {
                        "name": "dateFrom",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "YYYY-MM-DD or RFC3339"
                    },
                    {
                        "name": "dateTo",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "YYYY-MM-DD or RFC3339, a bare date covers the whole day"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Payments with per-status summary",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "PIX"
                ],
                "summary": "Create PIX charge",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreatePixChargeRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Charge created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "502": {
                        "description": "Provider unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/offerings/reconcile": {
            "get": {
                "tags": [
                    "PIX"
                ],
                "summary": "Reconciliation history",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "dateFrom",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "YYYY-MM-DD or RFC3339"
                    },
                    {
                        "name": "dateTo",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "YYYY-MM-DD or RFC3339, a bare date covers the whole day"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Latest PIX status changes",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "PIX"
                ],
                "summary": "Run PIX reconciliation",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/ReconcileRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Reconciliation report",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/pix-webhook": {
            "get": {
                "tags": [
                    "PIX"
                ],
                "summary": "Webhook health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "PIX"
                ],
                "summary": "PSP status callback",
                "parameters": [
                    {
                        "name": "X-Pix-Signature",
                        "in": "header",
                        "required": true,
                        "type": "string",
                        "description": "hex HMAC-SHA256 of the body"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PixWebhookEvent"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Applied or acknowledged",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Invalid signature",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown transaction",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/donations": {
            "post": {
                "tags": [
                    "Donations"
                ],
                "summary": "Record a donation",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateDonationRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Person or offering not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/donations/{id}/receipt": {
            "get": {
                "tags": [
                    "Donations"
                ],
                "summary": "Download donation receipt PDF",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Receipt PDF"
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/people/{id}/annual-report": {
            "get": {
                "tags": [
                    "Donations"
                ],
                "summary": "Download a person's annual donation report PDF",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "year",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Calendar year, defaults to the current year"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Annual report PDF"
                    },
                    "400": {
                        "description": "Invalid year",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Person not found or no donations in the year",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": [
                "email",
                "password"
            ],
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "CreateOfferingRequest": {
            "type": "object",
            "required": [
                "origin",
                "method",
                "amount"
            ],
            "properties": {
                "date": {
                    "type": "string",
                    "format": "date-time"
                },
                "origin": {
                    "type": "string",
                    "enum": [
                        "CULTO",
                        "CAMPANHA",
                        "OFERTA",
                        "OUTRO"
                    ]
                },
                "method": {
                    "type": "string",
                    "enum": [
                        "CASH",
                        "CARD",
                        "TRANSFER",
                        "CHECK"
                    ]
                },
                "amount": {
                    "type": "integer",
                    "description": "Centavos"
                },
                "description": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "service_id": {
                    "type": "string"
                },
                "campus_id": {
                    "type": "string"
                }
            }
        },
        "CreatePixChargeRequest": {
            "type": "object",
            "required": [
                "amount",
                "description"
            ],
            "properties": {
                "amount": {
                    "type": "integer",
                    "description": "Centavos, 100 to 100000000"
                },
                "description": {
                    "type": "string"
                },
                "origin": {
                    "type": "string",
                    "enum": [
                        "CULTO",
                        "CAMPANHA",
                        "OFERTA",
                        "OUTRO"
                    ]
                },
                "service_id": {
                    "type": "string"
                },
                "campus_id": {
                    "type": "string"
                }
            }
        },
        "ReconcileRequest": {
            "type": "object",
            "properties": {
                "max_age_days": {
                    "type": "integer",
                    "minimum": 0,
                    "maximum": 90
                }
            }
        },
        "PixWebhookEvent": {
            "type": "object",
            "required": [
                "txId",
                "status"
            ],
            "properties": {
                "txId": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "PENDING",
                        "PAID",
                        "EXPIRED",
                        "CANCELLED"
                    ]
                },
                "paidAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "amount": {
                    "type": "integer"
                }
            }
        },
        "CreateDonationRequest": {
            "type": "object",
            "required": [
                "person_id",
                "amount",
                "method"
            ],
            "properties": {
                "person_id": {
                    "type": "string"
                },
                "offering_id": {
                    "type": "string"
                },
                "amount": {
                    "type": "integer"
                },
                "method": {
                    "type": "string"
                },
                "date": {
                    "type": "string",
                    "format": "date-time"
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
