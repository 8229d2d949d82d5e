package chunk

import "testing"

const goSource = `package sample

import "fmt"

type Widget struct {
	ID int
}

func (w *Widget) Render() string {
	return fmt.Sprintf("widget %d", w.ID)
}

func NewWidget(id int) *Widget {
	return &Widget{ID: id}
}
`

func TestExtract_Go(t *testing.T) {
	chunks := Extract("widget.go", goSource)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3: %+v", len(chunks), chunks)
	}

	if chunks[0].Name != "Widget" || chunks[0].Kind != KindType {
		t.Errorf("chunk 0 = %s/%s, want Widget/type", chunks[0].Name, chunks[0].Kind)
	}
	if chunks[1].Name != "Render" || chunks[1].Kind != KindMethod {
		t.Errorf("chunk 1 = %s/%s, want Render/method", chunks[1].Name, chunks[1].Kind)
	}
	if chunks[2].Name != "NewWidget" || chunks[2].Kind != KindFunction {
		t.Errorf("chunk 2 = %s/%s, want NewWidget/function", chunks[2].Name, chunks[2].Kind)
	}

	for _, c := range chunks {
		if c.Language != "go" {
			t.Errorf("chunk %s language = %q, want go", c.Name, c.Language)
		}
		if c.StartLine < 1 || c.EndLine < c.StartLine {
			t.Errorf("chunk %s has bad line span %d-%d", c.Name, c.StartLine, c.EndLine)
		}
	}
}

func TestExtract_Python(t *testing.T) {
	src := `import os

class Loader:
    def __init__(self):
        self.cache = {}

async def fetch(url):
    pass
`
	chunks := Extract("loader.py", src)
	names := make(map[string]Kind)
	for _, c := range chunks {
		names[c.Name] = c.Kind
	}
	if names["Loader"] != KindClass {
		t.Errorf("Loader kind = %s, want class", names["Loader"])
	}
	if names["fetch"] != KindFunction {
		t.Errorf("fetch kind = %s, want function", names["fetch"])
	}
	// Indented methods are folded into their class chunk.
	if _, ok := names["__init__"]; ok {
		t.Error("indented method should not be a top-level chunk")
	}
}

func TestExtract_TypeScript(t *testing.T) {
	src := `export class Client {
  constructor() {}
}

export async function connect(url: string) {
  return new Client()
}

const parse = (raw: string) => JSON.parse(raw)
`
	chunks := Extract("client.ts", src)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3: %+v", len(chunks), chunks)
	}
	if chunks[0].Name != "Client" || chunks[0].Kind != KindClass {
		t.Errorf("chunk 0 = %s/%s, want Client/class", chunks[0].Name, chunks[0].Kind)
	}
	if chunks[1].Name != "connect" || chunks[1].Kind != KindFunction {
		t.Errorf("chunk 1 = %s/%s, want connect/function", chunks[1].Name, chunks[1].Kind)
	}
	if chunks[2].Name != "parse" || chunks[2].Kind != KindFunction {
		t.Errorf("chunk 2 = %s/%s, want parse/function", chunks[2].Name, chunks[2].Kind)
	}
	if chunks[0].Language != "typescript" {
		t.Errorf("language = %q, want typescript", chunks[0].Language)
	}
}

func TestExtract_SQL(t *testing.T) {
	src := `CREATE TABLE users (
    id INTEGER PRIMARY KEY
);

create table if not exists sessions (
    token TEXT
);
`
	chunks := Extract("schema.sql", src)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2: %+v", len(chunks), chunks)
	}
	if chunks[0].Name != "users" || chunks[1].Name != "sessions" {
		t.Errorf("names = %s, %s; want users, sessions", chunks[0].Name, chunks[1].Name)
	}
	for _, c := range chunks {
		if c.Kind != KindTable {
			t.Errorf("chunk %s kind = %s, want table", c.Name, c.Kind)
		}
	}
}

func TestExtract_UnknownExtensionWholeFile(t *testing.T) {
	chunks := Extract("notes.md", "# Title\n\nsome text\n")
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Kind != KindFile || c.Name != "notes.md" {
		t.Errorf("chunk = %s/%s, want notes.md/file", c.Name, c.Kind)
	}
	if c.StartLine != 1 {
		t.Errorf("StartLine = %d, want 1", c.StartLine)
	}
}

func TestExtract_NoConstructsWholeFile(t *testing.T) {
	chunks := Extract("empty.go", "package sample\n\n// nothing here\n")
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].Kind != KindFile {
		t.Errorf("kind = %s, want file", chunks[0].Kind)
	}
	if chunks[0].Language != "go" {
		t.Errorf("language = %q, want go", chunks[0].Language)
	}
}
