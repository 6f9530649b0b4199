package wiki

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// contentSelection parses markup and returns its content region for
// direct classifier tests.
func contentSelection(t *testing.T, body string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><div id="mw-content-text">` + body + `</div></body></html>`))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc.Find("#mw-content-text")
}

func TestClassifyEntities(t *testing.T) {
	t.Run("classifies by rule precedence", func(t *testing.T) {
		content := contentSelection(t, `
<p><a href="/wiki/Alan_Turing" title="Alan Turing">Alan Turing</a> was born in 1912.</p>
<p>He studied at <a href="/wiki/King%27s_College" title="King's College, Cambridge">King's College University</a>.</p>
<p>He later worked in <a href="/wiki/United_States" title="United States">United States</a>.</p>
<p>See <a href="/wiki/Manchester" title="City of Manchester">Manchester</a> for context.</p>`)

		got := ClassifyEntities(content, 50, 10)

		if len(got.People) != 1 || got.People[0] != "Alan Turing" {
			t.Errorf("People = %v", got.People)
		}
		if len(got.Organizations) != 1 || got.Organizations[0] != "King's College University" {
			t.Errorf("Organizations = %v", got.Organizations)
		}
		// United States via gazetteer, Manchester via "City" in the target.
		if len(got.Locations) != 2 {
			t.Errorf("Locations = %v", got.Locations)
		}
	})

	t.Run("person rule requires short link text", func(t *testing.T) {
		content := contentSelection(t, `
<p><a href="/wiki/L" title="Long">History of the very long named thing</a> was born here.</p>`)

		got := ClassifyEntities(content, 50, 10)
		if len(got.People) != 0 {
			t.Errorf("People = %v, want empty for 6-word link text", got.People)
		}
	})

	t.Run("gazetteer matches space-separated labels", func(t *testing.T) {
		// "United Kingdom" with a space must hit the underscore-keyed
		// gazetteer entry.
		content := contentSelection(t, `
<p>Sovereignty of the <a href="/wiki/United_Kingdom" title="United Kingdom">United Kingdom</a>.</p>`)

		got := ClassifyEntities(content, 50, 10)
		if len(got.Locations) != 1 || got.Locations[0] != "United Kingdom" {
			t.Errorf("Locations = %v", got.Locations)
		}
	})

	t.Run("duplicate targets collapse to first occurrence", func(t *testing.T) {
		content := contentSelection(t, `
<p>Visit <a href="/wiki/France" title="France">France</a> and again
<a href="/wiki/France" title="France">France</a>.</p>`)

		got := ClassifyEntities(content, 50, 10)
		if len(got.Locations) != 1 {
			t.Errorf("Locations = %v, want one entry", got.Locations)
		}
	})

	t.Run("category cap", func(t *testing.T) {
		var b strings.Builder
		names := []string{"Germany", "France", "Japan", "China", "India", "Russia", "Canada"}
		for _, n := range names {
			b.WriteString(`<p>About <a href="/wiki/` + n + `" title="` + n + `">` + n + `</a>.</p>`)
		}

		got := ClassifyEntities(contentSelection(t, b.String()), 50, 3)
		if len(got.Locations) != 3 {
			t.Errorf("Locations = %v, want cap of 3", got.Locations)
		}
	})

	t.Run("link scan cap", func(t *testing.T) {
		// The qualifying link sits past the scan cap and must be skipped.
		var b strings.Builder
		for i := 0; i < 5; i++ {
			b.WriteString(`<p><a href="/wiki/Thing" title="Thing">Ordinary link</a></p>`)
		}
		b.WriteString(`<p>About <a href="/wiki/Germany" title="Germany">Germany</a>.</p>`)

		got := ClassifyEntities(contentSelection(t, b.String()), 5, 10)
		if len(got.Locations) != 0 {
			t.Errorf("Locations = %v, want empty past scan cap", got.Locations)
		}
	})

	t.Run("short link text skipped", func(t *testing.T) {
		content := contentSelection(t, `
<p>Born in <a href="/wiki/United_States" title="United States">US</a>.</p>`)

		got := ClassifyEntities(content, 50, 10)
		if len(got.Locations) != 0 {
			t.Errorf("Locations = %v, want empty for 2-char text", got.Locations)
		}
	})
}
