package markup

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.Render("**Deploy** the `api`\n\n- [x] build\n- [ ] release")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"<strong>Deploy</strong>", "<code>api</code>", "<li>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestRenderStripsScripts(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.Render("hello <script>alert(1)</script> [x](javascript:alert(1))")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Contains(out, "<script") || strings.Contains(out, "javascript:") {
		t.Fatalf("unsafe markup survived: %q", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	out, err := NewRenderer().Render("")
	if err != nil || out != "" {
		t.Fatalf("expected empty output, got %q, %v", out, err)
	}
}
