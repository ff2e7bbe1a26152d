package indexer

import (
	"context"
	"strings"
	"testing"
)

func TestExtractGo(t *testing.T) {
	extractor := NewExtractor()
	defer extractor.Close()

	goCode := `package main

func Add(a, b int) int {
	return a + b
}

type Calculator struct {
	result int
}

func (c *Calculator) Multiply(a, b int) int {
	return a * b
}
`

	entities, err := extractor.Extract(context.Background(), []byte(goCode), "go", "calc.go")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(entities) != 3 {
		t.Fatalf("expected 3 entities, got %d: %+v", len(entities), entities)
	}

	byName := map[string]int{}
	for i, e := range entities {
		byName[e.Name] = i
	}

	add := entities[byName["Add"]]
	if add.Kind != "function" {
		t.Errorf("expected Add to be a function, got %q", add.Kind)
	}
	if add.StartLine != 3 {
		t.Errorf("expected Add at line 3, got %d", add.StartLine)
	}
	if add.FilePath != "calc.go" {
		t.Errorf("expected file path calc.go, got %q", add.FilePath)
	}
	if !strings.HasPrefix(add.Summary, "calc.go\n") {
		t.Errorf("expected summary to lead with the file path, got %q", add.Summary)
	}

	if calc := entities[byName["Calculator"]]; calc.Kind != "type" {
		t.Errorf("expected Calculator to be a type, got %q", calc.Kind)
	}
	if mul := entities[byName["Multiply"]]; mul.Kind != "method" {
		t.Errorf("expected Multiply to be a method, got %q", mul.Kind)
	}
}

func TestExtractPython(t *testing.T) {
	extractor := NewExtractor()
	defer extractor.Close()

	pyCode := `def greet(name):
    return f"hello {name}"

class Greeter:
    def shout(self, name):
        return greet(name).upper()
`

	entities, err := extractor.Extract(context.Background(), []byte(pyCode), "python", "greet.py")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	// greet, Greeter, and the nested shout method.
	if len(entities) != 3 {
		t.Fatalf("expected 3 entities, got %d: %+v", len(entities), entities)
	}

	kinds := map[string]string{}
	for _, e := range entities {
		kinds[e.Name] = e.Kind
	}
	if kinds["greet"] != "function" {
		t.Errorf("expected greet to be a function, got %q", kinds["greet"])
	}
	if kinds["Greeter"] != "class" {
		t.Errorf("expected Greeter to be a class, got %q", kinds["Greeter"])
	}
}

func TestExtractTypeScript(t *testing.T) {
	extractor := NewExtractor()
	defer extractor.Close()

	tsCode := `export interface Billing {
  credits: number;
}

export class Account implements Billing {
  credits = 0;

  topUp(amount: number): void {
    this.credits += amount;
  }
}
`

	entities, err := extractor.Extract(context.Background(), []byte(tsCode), "typescript", "account.ts")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	kinds := map[string]string{}
	for _, e := range entities {
		kinds[e.Name] = e.Kind
	}
	if kinds["Billing"] != "interface" {
		t.Errorf("expected Billing to be an interface, got %q", kinds["Billing"])
	}
	if kinds["Account"] != "class" {
		t.Errorf("expected Account to be a class, got %q", kinds["Account"])
	}
	if kinds["topUp"] != "method" {
		t.Errorf("expected topUp to be a method, got %q", kinds["topUp"])
	}
}

func TestExtractUnknownLanguage(t *testing.T) {
	extractor := NewExtractor()
	defer extractor.Close()

	entities, err := extractor.Extract(context.Background(), []byte("body { color: red }"), "css", "style.css")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("expected no entities for an unsupported language, got %d", len(entities))
	}
}

func TestSummaryBounded(t *testing.T) {
	extractor := NewExtractor()
	defer extractor.Close()

	var b strings.Builder
	b.WriteString("package main\n\nfunc Big() {\n")
	for i := 0; i < 500; i++ {
		b.WriteString("\t_ = \"padding line to blow past the summary budget\"\n")
	}
	b.WriteString("}\n")

	entities, err := extractor.Extract(context.Background(), []byte(b.String()), "go", "big.go")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	// Path prefix plus the capped body.
	if len(entities[0].Summary) > maxSummaryBytes+len("big.go\n")+64 {
		t.Errorf("summary not bounded: %d bytes", len(entities[0].Summary))
	}
}
