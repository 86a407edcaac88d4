package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSchemaFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestInitRegistry(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "book.yml", `
table: books
fields:
  - name: Title
    alias: heading
  - name: PageCount
    type: int
  - name: PublishedAt
    column: published_on
    type: time
relations:
  author:
    entity: author
    fk: author_id
`)
	writeSchemaFile(t, dir, "author.yml", `
table: authors
fields:
  - name: FullName
`)
	t.Cleanup(ResetRegistry)

	if err := InitRegistry(dir); err != nil {
		t.Fatal(err)
	}

	book := GetEntity("book")
	if book == nil {
		t.Fatal("book entity not registered")
	}
	if book.Table != "books" {
		t.Fatalf("table = %q", book.Table)
	}

	title := book.Field("Title")
	if title == nil || title.Column != "title" || title.Type != TypeString {
		t.Fatalf("Title defaults wrong: %+v", title)
	}
	pages := book.Field("PageCount")
	if pages == nil || pages.Column != "page_count" || pages.Type != TypeInt {
		t.Fatalf("PageCount defaults wrong: %+v", pages)
	}
	published := book.Field("PublishedAt")
	if published == nil || published.Column != "published_on" {
		t.Fatalf("explicit column lost: %+v", published)
	}

	_, rel := book.Relation("author")
	if rel == nil || rel.Ref() == nil || rel.Ref().Name != "author" {
		t.Fatal("relation not linked to the author entity")
	}
	if rel.PrimaryKey() != "id" {
		t.Fatalf("pk default = %q", rel.PrimaryKey())
	}
}

func TestInitRegistryRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "bad.yml", `
table: bads
fields:
  - name: Title
    colunm: title
`)
	t.Cleanup(ResetRegistry)

	if err := InitRegistry(dir); err == nil {
		t.Fatal("misspelled field key must be rejected")
	}
}

func TestInitRegistryRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "bad.yml", `
table: bads
fields:
  - name: Title
    type: varchar
`)
	t.Cleanup(ResetRegistry)

	if err := InitRegistry(dir); err == nil {
		t.Fatal("unknown field type must be rejected")
	}
}

func TestInitRegistryRejectsUnknownRelationTarget(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "orphan.yml", `
table: orphans
fields:
  - name: Title
relations:
  parent:
    entity: no_such
    fk: parent_id
`)
	t.Cleanup(ResetRegistry)

	if err := InitRegistry(dir); err == nil {
		t.Fatal("relation to an unknown entity must be rejected")
	}
}

func TestInitRegistryRejectsExternalNameCollision(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "clash.yml", `
table: clashes
fields:
  - name: Title
  - name: Heading
    alias: title
`)
	t.Cleanup(ResetRegistry)

	if err := InitRegistry(dir); err == nil {
		t.Fatal("alias colliding with another field name must be rejected")
	}
}

func TestInitRegistryRejectsMissingTable(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "tableless.yml", `
fields:
  - name: Title
`)
	t.Cleanup(ResetRegistry)

	if err := InitRegistry(dir); err == nil {
		t.Fatal("entity without a table must be rejected")
	}
}

func TestLoadEntitiesFromEmptyDir(t *testing.T) {
	t.Cleanup(ResetRegistry)
	if err := LoadEntitiesFromDir(t.TempDir()); err == nil {
		t.Fatal("a directory without schema files must be rejected")
	}
}
