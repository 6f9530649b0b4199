package wiki

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/abhich05/wikiquiz/internal/models"
)

// fallbackTitle is used when the article markup has no top-level heading.
const fallbackTitle = "Unknown Title"

// nonContentSelector matches boilerplate elements that must be removed from
// the content region before any text is extracted. Tables are included
// because infoboxes and navboxes would otherwise leak label soup into the
// body text; the infobox is captured separately beforehand.
const nonContentSelector = "script, style, table, nav, .navbox, .ambox, .mw-editsection"

// sectionStoplist names the appendix-style sections excluded from the
// extracted section labels.
var sectionStoplist = map[string]bool{
	"see also":       true,
	"references":     true,
	"external links": true,
	"notes":          true,
	"bibliography":   true,
}

var (
	citationRe   = regexp.MustCompile(`\[\d+\]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ExtractOptions bounds the extraction and entity classification work.
type ExtractOptions struct {
	// MinContentChars is the minimum length for the extracted body text
	// and for a paragraph to qualify as the article summary.
	MinContentChars int

	// MaxLinksScanned caps how many internal links the entity classifier
	// examines, in reading order.
	MaxLinksScanned int

	// MaxEntities caps each entity category after deduplication.
	MaxEntities int
}

// DefaultExtractOptions returns the standard extraction bounds.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		MinContentChars: 100,
		MaxLinksScanned: 50,
		MaxEntities:     10,
	}
}

// Extract parses raw article markup into an ArticleDocument. The caller
// supplies the canonical URL the markup was fetched from.
//
// Extraction order matters: the infobox is captured first (it lives inside
// a table that is about to be removed), then all boilerplate elements are
// stripped from the content region, and only then is any text walked.
// Skipping the strip step leaks navigation chrome into the body text.
func Extract(markup, url string, opts ExtractOptions) (*models.ArticleDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing markup: %v", ErrExtraction, err)
	}

	content := doc.Find("#mw-content-text").First()
	if content.Length() == 0 {
		return nil, fmt.Errorf("%w: could not find article content region", ErrExtraction)
	}

	infobox := extractInfobox(content)

	content.Find(nonContentSelector).Remove()

	title := strings.TrimSpace(doc.Find("h1#firstHeading").First().Text())
	if title == "" {
		title = fallbackTitle
	}

	summary := extractSummary(content, opts.MinContentChars)
	sections := extractSections(content)

	body := extractBody(content)
	if len(body) < opts.MinContentChars {
		return nil, fmt.Errorf("%w: article content too short (%d chars)", ErrExtraction, len(body))
	}

	entities := ClassifyEntities(content, opts.MaxLinksScanned, opts.MaxEntities)

	return &models.ArticleDocument{
		URL:       url,
		Title:     title,
		Summary:   summary,
		Content:   body,
		Sections:  sections,
		Entities:  entities,
		Infobox:   infobox,
		FetchedAt: time.Now(),
	}, nil
}

// extractSummary returns the first paragraph longer than minChars that does
// not begin with a coordinate marker, with citation brackets removed. An
// article with no qualifying paragraph has an empty summary.
func extractSummary(content *goquery.Selection, minChars int) string {
	var summary string
	content.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len(text) > minChars && !strings.HasPrefix(text, "Coordinates:") {
			summary = strings.TrimSpace(citationRe.ReplaceAllString(text, ""))
			return false
		}
		return true
	})
	return summary
}

// extractSections returns the h2/h3 heading labels in document order,
// skipping the appendix sections in the stoplist.
func extractSections(content *goquery.Selection) []string {
	var sections []string
	content.Find("h2, h3").Each(func(_ int, h *goquery.Selection) {
		label := strings.TrimSpace(h.Find("span.mw-headline").First().Text())
		if label == "" {
			label = strings.TrimSpace(h.Text())
		}
		if label == "" || sectionStoplist[strings.ToLower(label)] {
			return
		}
		sections = append(sections, label)
	})
	return sections
}

// extractBody joins all paragraph texts with blank lines. Citation brackets
// are removed and whitespace runs inside each paragraph collapse to a
// single space; the blank-line separators between paragraphs survive.
func extractBody(content *goquery.Selection) string {
	var paragraphs []string
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := citationRe.ReplaceAllString(p.Text(), "")
		text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

// extractInfobox reads the article's structured sidebar table into a
// key/value map. Articles without an infobox return an empty map.
func extractInfobox(content *goquery.Selection) map[string]string {
	data := make(map[string]string)
	infobox := content.Find("table.infobox").First()
	if infobox.Length() == 0 {
		return data
	}

	infobox.Find("tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th").First()
		td := row.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return
		}
		key := strings.TrimSpace(whitespaceRe.ReplaceAllString(th.Text(), " "))
		value := citationRe.ReplaceAllString(td.Text(), "")
		value = strings.TrimSpace(whitespaceRe.ReplaceAllString(value, " "))
		if key != "" && value != "" {
			data[key] = value
		}
	})
	return data
}
