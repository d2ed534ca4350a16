package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Class Attendance API",
        "description": "Rosters, classes and per-date attendance with summary statistics.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Sessions",
            "description": "Roster templates per academic term"
        },
        {
            "name": "Classes",
            "description": "Classes created from rosters"
        },
        {
            "name": "Attendance",
            "description": "Attendance ledger and aggregates"
        }
    ],
    "paths": {
        "/sessions": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "List sessions",
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
                    "Sessions"
                ],
                "summary": "Import session roster",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ImportRosterRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Already exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{name}": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Get session roster",
                "description": "Falls back to the newest attendance record with the same name.",
                "parameters": [
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
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
        "/classes": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "List classes",
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
                    "Classes"
                ],
                "summary": "Create class from a session roster",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateClassRequest"
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
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "Get class",
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
                        "description": "OK",
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
            },
            "delete": {
                "tags": [
                    "Classes"
                ],
                "summary": "Delete class and its attendance",
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
                        "description": "OK",
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
        "/classes/{id}/attendance": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "List class attendance, newest first",
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
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/classes/{id}/attendance/export": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "Export class attendance matrix",
                "produces": [
                    "application/json",
                    "text/csv",
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
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "json",
                            "csv",
                            "pdf"
                        ],
                        "default": "json"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Matrix or file"
                    }
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "List attendance records",
                "parameters": [
                    {
                        "name": "className",
                        "in": "query",
                        "type": "string",
                        "description": "Class name"
                    },
                    {
                        "name": "session",
                        "in": "query",
                        "type": "string",
                        "description": "Session"
                    },
                    {
                        "name": "name",
                        "in": "query",
                        "type": "string",
                        "description": "Record label"
                    }
                ],
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
                    "Attendance"
                ],
                "summary": "Save attendance for a class and date",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpsertAttendanceRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Updated",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/attendance/summary": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Per-student attendance calendar keyed by name",
                "parameters": [
                    {
                        "name": "className",
                        "in": "query",
                        "type": "string",
                        "description": "Class name"
                    },
                    {
                        "name": "session",
                        "in": "query",
                        "type": "string",
                        "description": "Session"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/attendance/stats": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Attendance statistics",
                "parameters": [
                    {
                        "name": "className",
                        "in": "query",
                        "type": "string",
                        "description": "Class name"
                    },
                    {
                        "name": "session",
                        "in": "query",
                        "type": "string",
                        "description": "Session"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/attendance/status-info": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Status code legend",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/attendance/{date}": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Get attendance by date",
                "parameters": [
                    {
                        "name": "date",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM-DD"
                    },
                    {
                        "name": "className",
                        "in": "query",
                        "type": "string",
                        "description": "Class name"
                    },
                    {
                        "name": "session",
                        "in": "query",
                        "type": "string",
                        "description": "Session"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Ambiguous date",
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
            },
            "put": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Update attendance name or students",
                "parameters": [
                    {
                        "name": "date",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM-DD"
                    },
                    {
                        "name": "className",
                        "in": "query",
                        "type": "string",
                        "description": "Class name"
                    },
                    {
                        "name": "session",
                        "in": "query",
                        "type": "string",
                        "description": "Session"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateAttendanceRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
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
            },
            "delete": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Delete attendance by date",
                "parameters": [
                    {
                        "name": "date",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM-DD"
                    },
                    {
                        "name": "className",
                        "in": "query",
                        "type": "string",
                        "description": "Class name"
                    },
                    {
                        "name": "session",
                        "in": "query",
                        "type": "string",
                        "description": "Session"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
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
        }
    },
    "definitions": {
        "Student": {
            "type": "object",
            "required": [
                "studentId",
                "name"
            ],
            "properties": {
                "studentId": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "StudentStatus": {
            "type": "object",
            "properties": {
                "studentId": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "status": {
                    "type": "integer",
                    "description": "0 present, 3 absent, other values weighted presence"
                }
            }
        },
        "Lesson": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "topic": {
                    "type": "string"
                }
            }
        },
        "ImportRosterRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "students": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Student"
                    }
                },
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Lesson"
                    }
                }
            }
        },
        "CreateClassRequest": {
            "type": "object",
            "required": [
                "name",
                "session"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "session": {
                    "type": "string"
                },
                "students": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Student"
                    }
                },
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Lesson"
                    }
                }
            }
        },
        "UpsertAttendanceRequest": {
            "type": "object",
            "required": [
                "date",
                "className",
                "session",
                "students"
            ],
            "properties": {
                "date": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "className": {
                    "type": "string"
                },
                "session": {
                    "type": "string"
                },
                "students": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/StudentStatus"
                    }
                }
            }
        },
        "UpdateAttendanceRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "students": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/StudentStatus"
                    }
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
