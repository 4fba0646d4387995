package mdh

import "testing"

func TestStripFrontMatterYAML(t *testing.T) {
	src := []byte("---\ntitle: Test\n---\n# Body\n")
	meta, body := StripFrontMatter(src)
	if string(meta) != "title: Test\n" {
		t.Fatalf("meta = %q", meta)
	}
	if string(body) != "# Body\n" {
		t.Fatalf("body = %q", body)
	}
}

func TestStripFrontMatterTOMLAndJSON(t *testing.T) {
	meta, body := StripFrontMatter([]byte("+++\ntitle = \"x\"\n+++\nbody\n"))
	if string(meta) != "title = \"x\"\n" || string(body) != "body\n" {
		t.Fatalf("toml: meta %q body %q", meta, body)
	}
	meta, body = StripFrontMatter([]byte(";;;\n{\"title\": \"x\"}\n;;;\nbody\n"))
	if string(meta) != "{\"title\": \"x\"}\n" || string(body) != "body\n" {
		t.Fatalf("json: meta %q body %q", meta, body)
	}
}

func TestStripFrontMatterRequiresMetadataShape(t *testing.T) {
	src := []byte("---\njust a line\n---\nbody\n")
	meta, body := StripFrontMatter(src)
	if meta != nil || string(body) != string(src) {
		t.Fatalf("non-metadata block must pass through: meta %q body %q", meta, body)
	}
}

func TestStripFrontMatterUnterminated(t *testing.T) {
	src := []byte("---\ntitle: x\nno closing delimiter\n")
	meta, body := StripFrontMatter(src)
	if meta != nil || string(body) != string(src) {
		t.Fatalf("unterminated front matter must pass through")
	}
}

func TestStripFrontMatterMismatchedDelimiters(t *testing.T) {
	src := []byte("---\ntitle: x\n+++\nbody\n")
	meta, body := StripFrontMatter(src)
	if meta != nil || string(body) != string(src) {
		t.Fatalf("mismatched delimiters must pass through")
	}
}

func TestStripFrontMatterPlainDocument(t *testing.T) {
	src := []byte("# Just Markdown\n")
	meta, body := StripFrontMatter(src)
	if meta != nil || string(body) != string(src) {
		t.Fatalf("plain document altered: meta %q body %q", meta, body)
	}
}
