package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/leadscout/internal/app/system/htmlsanitize"
)

func TestBody_StripsScriptsKeepsFormatting(t *testing.T) {
	in := `<p>Call back <b>Tuesday</b></p><script>alert("x")</script>`
	out := htmlsanitize.Body(in)

	if strings.Contains(out, "<script") || strings.Contains(out, "alert") {
		t.Errorf("script survived sanitization: %q", out)
	}
	if !strings.Contains(out, "<b>Tuesday</b>") {
		t.Errorf("benign formatting stripped: %q", out)
	}
}

func TestBody_StripsEventHandlers(t *testing.T) {
	out := htmlsanitize.Body(`<a href="https://example.com" onclick="steal()">site</a>`)
	if strings.Contains(out, "onclick") {
		t.Errorf("event handler survived: %q", out)
	}
	if !strings.Contains(out, "example.com") {
		t.Errorf("href stripped from benign link: %q", out)
	}
}

func TestLine_StripsAllMarkup(t *testing.T) {
	out := htmlsanitize.Line(`Acme <b>Plumbing</b><img src=x onerror=hack()>`)
	if strings.Contains(out, "<") {
		t.Errorf("markup survived strict policy: %q", out)
	}
	if !strings.Contains(out, "Acme") || !strings.Contains(out, "Plumbing") {
		t.Errorf("text content lost: %q", out)
	}
}
