// Package docs registers the OpenAPI description of the HTTP API with swag,
// so that /swagger/doc.json and the swagger UI can serve it. It follows the
// swag annotations on main and the handlers in pkg/login and pkg/account.
package docs

import "github.com/swaggo/swag"

const doc = `{
    "swagger": "2.0",
    "info": {
        "title": "Offen Accounts API",
        "description": "Admin panel and login API for offen accounts and users.",
        "contact": {
            "name": "API Support",
            "url": "http://www.swagger.io/support",
            "email": "support@swagger.io"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "1.0"
    },
    "host": "localhost:8080",
    "basePath": "/",
    "paths": {
        "/api/login": {
            "get": {
                "description": "Returns the user behind the session cookie.",
                "produces": ["application/json"],
                "tags": ["login"],
                "summary": "Current login",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/login.userResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/pkg.response"}}
                }
            },
            "post": {
                "description": "Exchanges an email and password for a session cookie.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["login"],
                "summary": "Log in",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pkg.LoginReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/login.userResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/pkg.response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/pkg.response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/pkg.response"}}
                }
            }
        },
        "/api/logout": {
            "post": {
                "description": "Deletes the session and expires the session cookie.",
                "tags": ["login"],
                "summary": "Log out",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/accounts/{accountID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get an account",
                "parameters": [
                    {"type": "string", "description": "account id", "name": "accountID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/account.accountResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/pkg.response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/pkg.response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/pkg.response"}}
                }
            }
        },
        "/api/accounts/{accountID}/key": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get the decrypted private key of an account",
                "parameters": [
                    {"type": "string", "description": "account id", "name": "accountID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/account.keyResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/pkg.response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/pkg.response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/pkg.response"}}
                }
            }
        }
    },
    "definitions": {
        "account.accountResponse": {
            "type": "object",
            "properties": {
                "accountId": {"type": "string"},
                "name": {"type": "string"},
                "publicKey": {"type": "string"}
            }
        },
        "account.keyResponse": {
            "type": "object",
            "properties": {
                "accountId": {"type": "string"},
                "privateKey": {"type": "string"}
            }
        },
        "login.userResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/session.Session"}
            }
        },
        "pkg.LoginReq": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "pkg.response": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "session.AccountRef": {
            "type": "object",
            "properties": {
                "accountId": {"type": "string"},
                "accountName": {"type": "string"}
            }
        },
        "session.Session": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "email": {"type": "string"},
                "accounts": {"type": "array", "items": {"$ref": "#/definitions/session.AccountRef"}}
            }
        }
    }
}`

type spec struct{}

func (spec) ReadDoc() string {
	return doc
}

func init() {
	swag.Register(swag.Name, spec{})
}
