package plan

import (
	"testing"

	"github.com/kingrea/stratum/internal/layer"
)

const sampleSchemaPlan = `# Schema Plan

### Table: users

- id: uuid (required)
- email: varchar (required)
- created_at: timestamp
- Note: soft deletes are out of scope

Migrations live in ` + "`migrations/001_users.sql`" + `.

### sessions table

- token: text (required)
`

func TestExtractSchemaFields(t *testing.T) {
	facts := NewHeuristicExtractor().Extract(layer.KindSchema, sampleSchemaPlan)
	if len(facts.Fields) != 4 {
		t.Fatalf("expected 4 fields, got %d: %+v", len(facts.Fields), facts.Fields)
	}
	first := facts.Fields[0]
	if first.Scope != "users" || first.Name != "id" || first.Type != "uuid" || !first.Required {
		t.Fatalf("unexpected first field: %+v", first)
	}
	if facts.Fields[2].Required {
		t.Fatalf("created_at should not be required")
	}
	if facts.Fields[3].Scope != "sessions" {
		t.Fatalf("expected suffix-style table heading to open a scope, got %+v", facts.Fields[3])
	}
	if len(facts.ReferencedFiles) != 1 || facts.ReferencedFiles[0] != "migrations/001_users.sql" {
		t.Fatalf("unexpected referenced files: %v", facts.ReferencedFiles)
	}
}

func TestExtractEndpointsAndHandlers(t *testing.T) {
	doc := `# Logic Plan

Implement handlers for:

- GET /users — handler: listUsers
- POST /users — handler: createUser

func deleteUser is kept for a later pass.
Files: ` + "`internal/users/service.go`" + `
`
	facts := NewHeuristicExtractor().Extract(layer.KindLogic, doc)
	if len(facts.Endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %v", facts.Endpoints)
	}
	if facts.Endpoints[0].Method != "GET" || facts.Endpoints[0].Path != "/users" {
		t.Fatalf("unexpected endpoint: %+v", facts.Endpoints[0])
	}
	want := map[string]bool{"listUsers": true, "createUser": true, "deleteUser": true}
	if len(facts.Handlers) != len(want) {
		t.Fatalf("expected %d handlers, got %v", len(want), facts.Handlers)
	}
	for _, handler := range facts.Handlers {
		if !want[handler] {
			t.Fatalf("unexpected handler %q", handler)
		}
	}
}

func TestExtractInterfaceSchemaBlocks(t *testing.T) {
	doc := `## Contracts

UserResponse:
  id: uuid
  email: string

Endpoints: GET /users, GET /users/{id}
`
	facts := NewHeuristicExtractor().Extract(layer.KindInterface, doc)
	if len(facts.Fields) != 2 || facts.Fields[0].Scope != "UserResponse" {
		t.Fatalf("unexpected fields: %+v", facts.Fields)
	}
	if len(facts.Endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %v", facts.Endpoints)
	}
}

func TestExtractPresentationCalls(t *testing.T) {
	doc := "The dashboard loads via `api.get('/users')` and falls back to " +
		"`fetch('/users/summary')` when the client is unavailable."
	facts := NewHeuristicExtractor().Extract(layer.KindPresentation, doc)
	if len(facts.Calls) != 2 || facts.Calls[0] != "/users" || facts.Calls[1] != "/users/summary" {
		t.Fatalf("unexpected calls: %v", facts.Calls)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	extractor := NewHeuristicExtractor()
	first := extractor.Extract(layer.KindSchema, sampleSchemaPlan)
	second := extractor.Extract(layer.KindSchema, sampleSchemaPlan)
	if len(first.Fields) != len(second.Fields) {
		t.Fatalf("field counts differ between runs")
	}
	for i := range first.Fields {
		if first.Fields[i] != second.Fields[i] {
			t.Fatalf("field %d differs between runs", i)
		}
	}
}
