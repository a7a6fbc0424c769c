package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the blog API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>blog-api - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "blog-api", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Error": { "type": "object", "properties": { "success": { "type": "boolean" }, "message": { "oneOf": [ { "type": "string" }, { "type": "array", "items": { "type": "string" } } ] } } },
      "PostInput": { "type": "object", "properties": { "title": { "type": "string", "minLength": 3 }, "content": { "type": "string", "minLength": 10 }, "categories": { "type": "array", "items": { "type": "string" } }, "featuredImage": { "type": "string" }, "status": { "type": "string", "enum": ["draft", "published"] } } },
      "CommentInput": { "type": "object", "properties": { "content": { "type": "string" } }, "required": ["content"] },
      "Credentials": { "type": "object", "properties": { "email": { "type": "string" }, "password": { "type": "string" } } },
      "Registration": { "type": "object", "properties": { "username": { "type": "string" }, "email": { "type": "string" }, "password": { "type": "string" } } },
      "RefreshToken": { "type": "object", "properties": { "refreshToken": { "type": "string" } } }
    }
  },
  "paths": {
    "/api/auth/register": { "post": { "summary": "Create an account", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Registration" } } } }, "responses": { "201": { "description": "tokens and user" }, "400": { "description": "validation failed or duplicate" } } } },
    "/api/auth/login": { "post": { "summary": "Log in with email and password", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Credentials" } } } }, "responses": { "200": { "description": "tokens and user" }, "401": { "description": "invalid credentials" } } } },
    "/api/auth/refresh": { "post": { "summary": "Exchange a refresh token for an access token", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/RefreshToken" } } } }, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh token" } } } },
    "/api/auth/logout": { "post": { "summary": "Revoke the access token and drop the refresh session", "security": [ { "bearer": [] } ], "responses": { "200": { "description": "logged out" } } } },
    "/api/auth/me": { "get": { "summary": "Current user", "security": [ { "bearer": [] } ], "responses": { "200": { "description": "user" }, "401": { "description": "not authorized" } } } },
    "/api/categories": {
      "get": { "summary": "List categories", "responses": { "200": { "description": "categories sorted by name" } } },
      "post": { "summary": "Create a category", "security": [ { "bearer": [] } ], "responses": { "201": { "description": "created" }, "400": { "description": "validation failed or duplicate" } } }
    },
    "/api/posts": {
      "get": { "summary": "List posts newest first", "parameters": [ { "name": "page", "in": "query", "schema": { "type": "integer", "default": 1 } }, { "name": "limit", "in": "query", "schema": { "type": "integer", "default": 10 } } ], "responses": { "200": { "description": "page of posts" } } },
      "post": { "summary": "Create a post", "security": [ { "bearer": [] } ], "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/PostInput" } } } }, "responses": { "201": { "description": "created" }, "400": { "description": "validation failed or duplicate slug" }, "401": { "description": "not authorized" } } }
    },
    "/api/posts/{id}": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
      "get": { "summary": "Get a post with references expanded", "responses": { "200": { "description": "post" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update a post (author or admin)", "security": [ { "bearer": [] } ], "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/PostInput" } } } }, "responses": { "200": { "description": "updated" }, "403": { "description": "not the author" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a post (author or admin)", "security": [ { "bearer": [] } ], "responses": { "200": { "description": "deleted" }, "403": { "description": "not the author" }, "404": { "description": "not found" } } }
    },
    "/api/posts/{id}/comments": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
      "post": { "summary": "Add a comment", "security": [ { "bearer": [] } ], "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/CommentInput" } } } }, "responses": { "201": { "description": "post with the new comment first" }, "400": { "description": "empty comment" }, "404": { "description": "not found" } } }
    },
    "/health": { "get": { "summary": "Liveness", "responses": { "200": { "description": "ok" } } } },
    "/ready": { "get": { "summary": "Readiness of MongoDB and Redis", "responses": { "200": { "description": "ready" }, "503": { "description": "a dependency is down" } } } }
  }
}`
