package northbound

import (
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/veesix-networks/vlanhal/pkg/version"
)

var (
	specOnce sync.Once
	spec     *openapi3.T
)

func (c *Component) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	specOnce.Do(func() { spec = buildOpenAPISpec() })
	c.writeJSON(w, spec)
}

func ptr(s string) *string { return &s }

func jsonResponse(desc string, schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: ptr(desc),
			Content:     openapi3.NewContentWithJSONSchema(schema),
		},
	}
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
}

func statusSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().WithProperty("status", openapi3.NewStringSchema())
}

func groupStateSchema() *openapi3.Schema {
	port := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("parent", openapi3.NewStringSchema()).
		WithProperty("vlan_id", openapi3.NewIntegerSchema()).
		WithProperty("tagged", openapi3.NewBoolSchema())

	return openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("present", openapi3.NewBoolSchema()).
		WithProperty("up", openapi3.NewBoolSchema()).
		WithProperty("default_vlan_id", openapi3.NewStringSchema()).
		WithProperty("ports", openapi3.NewArraySchema().WithItems(port))
}

func groupRequestSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("vlan_id", openapi3.NewStringSchema())
}

func requestBody(schema *openapi3.Schema) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(schema),
	}
}

func nameParam() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: openapi3.NewPathParameter("name").WithSchema(openapi3.NewStringSchema()),
	}
}

func buildOpenAPISpec() *openapi3.T {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "vlanhal API",
			Description: "Northbound REST API for vlanhald, the VLAN bridge-group management daemon",
			Version:     version.Version,
		},
		Paths: &openapi3.Paths{},
	}

	groupList := openapi3.NewArraySchema().WithItems(groupStateSchema())

	spec.Paths.Set("/api/groups", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"Groups"},
			Summary:     "List all bridge groups",
			OperationID: "listGroups",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, jsonResponse("All known bridge groups", groupList)),
			),
		},
		Post: &openapi3.Operation{
			Tags:        []string{"Groups"},
			Summary:     "Create a bridge group",
			OperationID: "addGroup",
			RequestBody: requestBody(groupRequestSchema()),
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(201, jsonResponse("Group created", statusSchema())),
				openapi3.WithStatus(409, jsonResponse("Group exists with a different VLAN ID", errorSchema())),
				openapi3.WithStatus(400, jsonResponse("Invalid name or VLAN ID", errorSchema())),
			),
		},
	})

	spec.Paths.Set("/api/groups/{name}", &openapi3.PathItem{
		Parameters: openapi3.Parameters{nameParam()},
		Get: &openapi3.Operation{
			Tags:        []string{"Groups"},
			Summary:     "Inspect one bridge group",
			OperationID: "getGroup",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, jsonResponse("Group state", groupStateSchema())),
				openapi3.WithStatus(404, jsonResponse("Group not found", errorSchema())),
			),
		},
		Delete: &openapi3.Operation{
			Tags:        []string{"Groups"},
			Summary:     "Delete a bridge group and detach its members",
			OperationID: "deleteGroup",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, jsonResponse("Group deleted (or already absent)", statusSchema())),
			),
		},
	})

	spec.Paths.Set("/api/groups/{name}/interfaces", &openapi3.PathItem{
		Parameters: openapi3.Parameters{nameParam()},
		Post: &openapi3.Operation{
			Tags:        []string{"Interfaces"},
			Summary:     "Attach a tagged interface to the group",
			OperationID: "addInterface",
			RequestBody: requestBody(groupRequestSchema()),
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(201, jsonResponse("Interface attached", statusSchema())),
				openapi3.WithStatus(404, jsonResponse("Group not found", errorSchema())),
				openapi3.WithStatus(409, jsonResponse("Interface attached under a different VLAN ID", errorSchema())),
			),
		},
		Delete: &openapi3.Operation{
			Tags:        []string{"Interfaces"},
			Summary:     "Detach every member interface of the group",
			OperationID: "flushInterfaces",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, jsonResponse("All members detached", statusSchema())),
				openapi3.WithStatus(404, jsonResponse("Group not found", errorSchema())),
			),
		},
	})

	spec.Paths.Set("/api/groups/{name}/interfaces/{ifname}", &openapi3.PathItem{
		Parameters: openapi3.Parameters{
			nameParam(),
			{Value: openapi3.NewPathParameter("ifname").WithSchema(openapi3.NewStringSchema())},
			{Value: openapi3.NewQueryParameter("vlan_id").WithSchema(openapi3.NewStringSchema())},
		},
		Delete: &openapi3.Operation{
			Tags:        []string{"Interfaces"},
			Summary:     "Detach one interface from the group",
			OperationID: "deleteInterface",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, jsonResponse("Interface detached (or was not a member)", statusSchema())),
			),
		},
	})

	entrySchema := openapi3.NewObjectSchema().
		WithProperty("group_name", openapi3.NewStringSchema()).
		WithProperty("vlan_id", openapi3.NewStringSchema())

	spec.Paths.Set("/api/config-entries", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"Config"},
			Summary:     "List the group-to-VLAN configuration entries",
			OperationID: "listConfigEntries",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, jsonResponse("Entries in name order",
					openapi3.NewArraySchema().WithItems(entrySchema))),
			),
		},
	})

	loggingInfo := openapi3.NewObjectSchema().
		WithProperty("default_level", openapi3.NewStringSchema()).
		WithProperty("levels", openapi3.NewObjectSchema().
			WithAdditionalProperties(openapi3.NewStringSchema()))

	spec.Paths.Set("/api/logging", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"Diagnostics"},
			Summary:     "Effective log levels",
			OperationID: "getLogging",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, jsonResponse("Default level and per-component overrides", loggingInfo)),
			),
		},
	})

	spec.Paths.Set("/api/logging/{component}", &openapi3.PathItem{
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewPathParameter("component").WithSchema(openapi3.NewStringSchema())},
		},
		Put: &openapi3.Operation{
			Tags:        []string{"Diagnostics"},
			Summary:     "Set or clear one component's log level",
			OperationID: "setLogging",
			RequestBody: requestBody(openapi3.NewObjectSchema().
				WithProperty("level", openapi3.NewStringSchema())),
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, jsonResponse("Level applied (empty level clears the override)",
					openapi3.NewObjectSchema().
						WithProperty("name", openapi3.NewStringSchema()).
						WithProperty("level", openapi3.NewStringSchema()))),
				openapi3.WithStatus(400, jsonResponse("Unknown level", errorSchema())),
			),
		},
	})

	for _, p := range []struct {
		path, tag, summary, opID string
	}{
		{"/api/stats", "Diagnostics", "Operation counters", "getStats"},
		{"/api/events", "Diagnostics", "Event bus statistics", "getEvents"},
		{"/api/version", "Diagnostics", "Build version", "getVersion"},
		{"/healthz", "Health", "Liveness probe", "healthz"},
		{"/readyz", "Health", "Readiness probe (fails on configuration drift)", "readyz"},
	} {
		spec.Paths.Set(p.path, &openapi3.PathItem{
			Get: &openapi3.Operation{
				Tags:        []string{p.tag},
				Summary:     p.summary,
				OperationID: p.opID,
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(200, jsonResponse(p.summary, openapi3.NewObjectSchema())),
				),
			},
		})
	}

	spec.Tags = openapi3.Tags{
		{Name: "Groups", Description: "Bridge group lifecycle"},
		{Name: "Interfaces", Description: "Tagged member interface management"},
		{Name: "Config", Description: "Configuration cache"},
		{Name: "Diagnostics", Description: "Counters, events, version"},
		{Name: "Health", Description: "Probes"},
	}

	return spec
}
