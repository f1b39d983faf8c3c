// Package openapi builds the OpenAPI 3.1 document for the admin surface,
// served at /openapi.json.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Generate builds the OpenAPI document for the admin API.
func Generate(version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "KUB Super Admin API",
			Description: "Administrator account lifecycle: create, list, update, delete, and invite delivery.",
			Version:     version,
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["superAdminKey"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "header",
			Name: "X-SUPER-ADMIN-KEY",
		},
	}
	doc.Security = openapi3.SecurityRequirements{
		{"superAdminKey": {}},
	}

	doc.Components.Schemas["Admin"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":          schemaOf("integer"),
				"last_name":   schemaOf("string"),
				"first_name":  schemaOf("string"),
				"middle_name": schemaOf("string"),
				"email":       schemaOf("string"),
				"created_at":  schemaOf("string"),
				"updated_at":  schemaOf("string"),
			},
		},
	}
	doc.Components.Schemas["AdminPayload"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"last_name", "first_name", "email"},
			Properties: openapi3.Schemas{
				"last_name":   schemaOf("string"),
				"first_name":  schemaOf("string"),
				"middle_name": schemaOf("string"),
				"email":       schemaOf("string"),
			},
		},
	}
	doc.Components.Schemas["Error"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"detail": schemaOf("string"),
			},
		},
	}

	doc.Paths = openapi3.NewPaths()
	doc.Paths.Set("/admins", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listAdmins",
			Summary:     "List all admins",
			Responses:   listResponses(),
		},
		Post: &openapi3.Operation{
			OperationID: "createAdmin",
			Summary:     "Create an admin and dispatch an invite",
			RequestBody: payloadBody(),
			Responses: responses(map[string]string{
				"201": "Created admin",
				"400": "Malformed request body",
				"401": "Missing or invalid super-admin key",
				"409": "Email already in use",
				"422": "Aggregated field violations",
			}),
		},
	})
	doc.Paths.Set("/admins/{id}", &openapi3.PathItem{
		Parameters: idParam(),
		Get: &openapi3.Operation{
			OperationID: "getAdmin",
			Summary:     "Fetch one admin",
			Responses: responses(map[string]string{
				"200": "Admin record",
				"400": "Id is not an integer",
				"401": "Missing or invalid super-admin key",
				"404": "No live admin with this id",
				"422": "Id outside the valid domain",
			}),
		},
		Put: &openapi3.Operation{
			OperationID: "updateAdmin",
			Summary:     "Replace an admin's fields",
			RequestBody: payloadBody(),
			Responses: responses(map[string]string{
				"200": "Updated admin record",
				"400": "Id or body malformed",
				"401": "Missing or invalid super-admin key",
				"404": "No live admin with this id",
				"422": "Id outside the valid domain or field violations",
			}),
		},
		Delete: &openapi3.Operation{
			OperationID: "deleteAdmin",
			Summary:     "Delete an admin",
			Responses: responses(map[string]string{
				"204": "Deleted",
				"400": "Id is not an integer",
				"401": "Missing or invalid super-admin key",
				"404": "No live admin with this id",
				"422": "Id outside the valid domain",
			}),
		},
	})
	doc.Paths.Set("/admins/{id}/resend", &openapi3.PathItem{
		Parameters: idParam(),
		Post: &openapi3.Operation{
			OperationID: "resendInvite",
			Summary:     "Resend the invite mail",
			Responses: responses(map[string]string{
				"200": "Admin record, invite dispatched",
				"400": "Id is not an integer",
				"401": "Missing or invalid super-admin key",
				"404": "No live admin with this id",
				"422": "Id outside the valid domain",
				"503": "Invite delivery transiently unavailable",
			}),
		},
	})

	return doc
}

func schemaOf(typ string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{typ}}}
}

func idParam() openapi3.Parameters {
	required := true
	return openapi3.Parameters{
		&openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:     "id",
				In:       "path",
				Required: required,
				Schema:   schemaOf("integer"),
			},
		},
	}
}

func payloadBody() *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{Ref: "#/components/schemas/AdminPayload"},
				},
			},
		},
	}
}

func responses(byStatus map[string]string) *openapi3.Responses {
	out := openapi3.NewResponses()
	for status, desc := range byStatus {
		d := desc
		resp := &openapi3.Response{Description: &d}
		switch status {
		case "200", "201":
			resp.Content = openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{Ref: "#/components/schemas/Admin"},
				},
			}
		case "204":
			// no body
		default:
			resp.Content = openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{Ref: "#/components/schemas/Error"},
				},
			}
		}
		out.Set(status, &openapi3.ResponseRef{Value: resp})
	}
	return out
}

func listResponses() *openapi3.Responses {
	out := openapi3.NewResponses()
	okDesc := "All live admins"
	out.Set("200", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &okDesc,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{
						Value: &openapi3.Schema{
							Type:  &openapi3.Types{"array"},
							Items: &openapi3.SchemaRef{Ref: "#/components/schemas/Admin"},
						},
					},
				},
			},
		},
	})
	unauthorized := "Missing or invalid super-admin key"
	out.Set("401", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &unauthorized,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{Ref: "#/components/schemas/Error"},
				},
			},
		},
	})
	return out
}
