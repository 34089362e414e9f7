package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>ATM Ledger API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "ATM Ledger API",
    "version": "1.0.0"
  },
  "paths": {
    "/register": {
      "post": {
        "summary": "Register a customer and open the first account",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/RegisterRequest"}}}},
        "responses": {
          "201": {"description": "Registered"},
          "400": {"description": "Validation error"},
          "409": {"description": "User already exists"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/me": {
      "get": {
        "summary": "Get the authenticated customer profile",
        "security": [{"BasicAuth": []}],
        "responses": {"200": {"description": "Profile fetched"}, "401": {"description": "Unauthorized"}, "500": {"description": "Server error"}}
      }
    },
    "/accounts": {
      "get": {
        "summary": "List the customer accounts",
        "security": [{"BasicAuth": []}],
        "responses": {"200": {"description": "Accounts fetched"}, "401": {"description": "Unauthorized"}, "500": {"description": "Server error"}}
      },
      "post": {
        "summary": "Open an additional account",
        "security": [{"BasicAuth": []}],
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OpenAccountRequest"}}}},
        "responses": {"201": {"description": "Account opened"}, "400": {"description": "Validation error"}, "401": {"description": "Unauthorized"}, "500": {"description": "Server error"}}
      }
    },
    "/accounts/{accountNumber}": {
      "get": {
        "summary": "Account dashboard for owned accounts, destination preview otherwise",
        "security": [{"BasicAuth": []}],
        "parameters": [{"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string", "pattern": "^[0-9]{10}$"}}],
        "responses": {"200": {"description": "Account fetched"}, "400": {"description": "Validation error"}, "401": {"description": "Unauthorized"}, "404": {"description": "Account not found"}, "500": {"description": "Server error"}}
      }
    },
    "/accounts/{accountNumber}/transactions": {
      "get": {
        "summary": "Most recent transactions, newest first",
        "security": [{"BasicAuth": []}],
        "parameters": [{"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string", "pattern": "^[0-9]{10}$"}}, {"name": "limit", "in": "query", "required": false, "schema": {"type": "integer", "minimum": 0, "maximum": 100}}],
        "responses": {"200": {"description": "Transactions fetched"}, "400": {"description": "Validation error"}, "401": {"description": "Unauthorized"}, "403": {"description": "Account does not belong to user"}, "404": {"description": "Account not found"}, "500": {"description": "Server error"}}
      }
    },
    "/deposit": {
      "post": {
        "summary": "Deposit funds",
        "security": [{"BasicAuth": []}],
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AmountRequest"}}}},
        "responses": {"200": {"description": "Success"},
          "400": {"description": "Validation error or invalid amount"},
          "401": {"description": "Unauthorized"},
          "403": {"description": "Account does not belong to user"},
          "404": {"description": "Account not found"},
          "422": {"description": "Insufficient balance"},
          "500": {"description": "Server error"}}
      }
    },
    "/withdraw": {
      "post": {
        "summary": "Withdraw funds",
        "security": [{"BasicAuth": []}],
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AmountRequest"}}}},
        "responses": {"200": {"description": "Success"},
          "400": {"description": "Validation error or invalid amount"},
          "401": {"description": "Unauthorized"},
          "403": {"description": "Account does not belong to user"},
          "404": {"description": "Account not found"},
          "422": {"description": "Insufficient balance"},
          "500": {"description": "Server error"}}
      }
    },
    "/transfer": {
      "post": {
        "summary": "Transfer funds to another account",
        "security": [{"BasicAuth": []}],
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/TransferRequest"}}}},
        "responses": {"200": {"description": "Success"},
          "400": {"description": "Validation error or invalid amount"},
          "401": {"description": "Unauthorized"},
          "403": {"description": "Account does not belong to user"},
          "404": {"description": "Account not found"},
          "422": {"description": "Insufficient balance"},
          "500": {"description": "Server error"}}
      }
    },
    "/bill-payments": {
      "post": {
        "summary": "Pay a water or electricity bill",
        "security": [{"BasicAuth": []}],
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/BillPaymentRequest"}}}},
        "responses": {"200": {"description": "Success"},
          "400": {"description": "Validation error or invalid amount"},
          "401": {"description": "Unauthorized"},
          "403": {"description": "Account does not belong to user"},
          "404": {"description": "Account not found"},
          "422": {"description": "Insufficient balance"},
          "500": {"description": "Server error"}}
      }
    }
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {"type": "http", "scheme": "basic"}
    },
    "schemas": {
      "RegisterRequest": {
        "type": "object",
        "required": ["username", "email", "identification", "password", "accountClass"],
        "properties": {
          "username": {"type": "string"},
          "email": {"type": "string", "format": "email"},
          "identification": {"type": "string", "pattern": "^[0-9]{10}$"},
          "phoneNumber": {"type": "string", "pattern": "^[0-9]{10}$"},
          "password": {"type": "string", "minLength": 8},
          "accountClass": {"type": "string", "enum": ["CURRENT", "SAVINGS"]}
        }
      },
      "OpenAccountRequest": {
        "type": "object",
        "required": ["accountClass"],
        "properties": {
          "accountClass": {"type": "string", "enum": ["CURRENT", "SAVINGS"]}
        }
      },
      "AmountRequest": {
        "type": "object",
        "required": ["accountNumber", "amount"],
        "properties": {
          "accountNumber": {"type": "string", "pattern": "^[0-9]{10}$"},
          "amount": {"type": "string", "example": "100.00"}
        }
      },
      "TransferRequest": {
        "type": "object",
        "required": ["sourceAccountNumber", "destinationAccountNumber", "amount"],
        "properties": {
          "sourceAccountNumber": {"type": "string", "pattern": "^[0-9]{10}$"},
          "destinationAccountNumber": {"type": "string", "pattern": "^[0-9]{10}$"},
          "amount": {"type": "string", "example": "30.00"}
        }
      },
      "BillPaymentRequest": {
        "type": "object",
        "required": ["accountNumber", "serviceType", "billNumber", "amount"],
        "properties": {
          "accountNumber": {"type": "string", "pattern": "^[0-9]{10}$"},
          "serviceType": {"type": "string", "enum": ["WATER", "ELECTRICITY"]},
          "billNumber": {"type": "string", "maxLength": 50},
          "amount": {"type": "string", "example": "45.10"}
        }
      }
    }
  }
}`
