package ai

import (
	"fmt"
	"strings"

	"github.com/abhich05/wikiquiz/internal/models"
)

// maxPromptSections caps how many section labels are listed in the quiz
// prompt.
const maxPromptSections = 10

// Excerpt lengths for the related-topics prompt.
const (
	relatedSummaryChars = 500
	relatedContentChars = 1000
)

// QuizPrompt builds the generation request for a quiz. It embeds the
// article's title, summary, section labels, and body text (truncated to
// maxContentChars), states the per-band question counts, and pins down
// the exact JSON output schema. The grounding constraint (answer only
// from the supplied text) is stated up front.
func QuizPrompt(doc *models.ArticleDocument, spec models.QuizSpec, maxContentChars int) string {
	content := doc.Content
	if len(content) > maxContentChars {
		content = content[:maxContentChars] + "..."
	}

	sectionsText := "N/A"
	if len(doc.Sections) > 0 {
		sections := doc.Sections
		if len(sections) > maxPromptSections {
			sections = sections[:maxPromptSections]
		}
		sectionsText = strings.Join(sections, ", ")
	}

	easy, medium, hard := spec.Bands()
	n := spec.NumQuestions

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert quiz generator. Create a high-quality educational quiz about %q based STRICTLY on the provided Wikipedia article content.\n\n", doc.Title)

	b.WriteString("**CRITICAL INSTRUCTIONS:**\n")
	b.WriteString("1. ALL questions MUST be directly answerable from the article content provided below\n")
	b.WriteString("2. DO NOT use external knowledge or make assumptions\n")
	b.WriteString("3. If you reference a fact, it MUST appear in the article text\n")
	b.WriteString("4. Include the section name where the information can be found\n")
	fmt.Fprintf(&b, "5. Generate EXACTLY %d questions with varied difficulty\n\n", n)

	b.WriteString("**ARTICLE INFORMATION:**\n\n")
	fmt.Fprintf(&b, "**Title:** %s\n\n", doc.Title)
	fmt.Fprintf(&b, "**Summary:**\n%s\n\n", doc.Summary)
	fmt.Fprintf(&b, "**Available Sections:** %s\n\n", sectionsText)
	fmt.Fprintf(&b, "**Full Article Content:**\n%s\n\n", content)

	b.WriteString("**QUIZ REQUIREMENTS:**\n\n")
	fmt.Fprintf(&b, "Generate %d multiple-choice questions with this distribution:\n", n)
	fmt.Fprintf(&b, "- %d EASY questions (basic facts, definitions from early sections)\n", easy)
	fmt.Fprintf(&b, "- %d MEDIUM questions (requiring understanding and connection of concepts)\n", medium)
	fmt.Fprintf(&b, "- %d HARD questions (requiring analysis, synthesis, or deep comprehension)\n\n", hard)

	b.WriteString(`**EACH QUESTION MUST INCLUDE:**
1. **question**: Clear, specific question text
2. **options**: Array of exactly 4 options
3. **answer**: The correct option (must be one of the 4 options)
4. **difficulty**: "easy", "medium", or "hard"
5. **explanation**: 1-2 sentence explanation with reference to article section
6. **section**: Which article section this relates to (from sections list above)

**QUALITY STANDARDS:**
- Questions should test different aspects of the topic
- Wrong answers (distractors) should be plausible but clearly incorrect
- Avoid "all of the above" or "none of the above" options
- Avoid trick questions or ambiguous wording
- Ensure factual accuracy by grounding in article text

**OUTPUT FORMAT:**
Return ONLY valid JSON with no markdown formatting or extra text. Ensure all strings are properly escaped and all commas are correctly placed.

{
  "questions": [
    {
      "question": "Question text here?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "Option A",
      "difficulty": "easy",
      "explanation": "Brief explanation referencing the article section.",
      "section": "Section name from article"
    }
  ]
}

Generate the quiz now in valid JSON format:`)

	return b.String()
}

// RelatedTopicsPrompt builds the generation request for follow-up reading
// suggestions: 5-8 Wikipedia topic names as a flat JSON array under the
// related_topics key.
func RelatedTopicsPrompt(doc *models.ArticleDocument) string {
	summary := doc.Summary
	if len(summary) > relatedSummaryChars {
		summary = summary[:relatedSummaryChars]
	}
	content := doc.Content
	if len(content) > relatedContentChars {
		content = content[:relatedContentChars]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on this Wikipedia article about %q, suggest 5-8 related Wikipedia topics that would be interesting for further reading.\n\n", doc.Title)
	fmt.Fprintf(&b, "**Article Summary:**\n%s\n\n", summary)
	fmt.Fprintf(&b, "**Article Content Preview:**\n%s\n\n", content)

	b.WriteString(`**REQUIREMENTS:**
1. Topics should be directly related to the main article
2. Topics should exist as actual Wikipedia articles (use proper Wikipedia naming)
3. Include a mix of:
   - Broader concepts
   - Related people or events
   - Related technologies or theories
   - Historical context or background
4. Return ONLY a JSON array of topic names

**OUTPUT FORMAT:**
` + "```json" + `
{
  "related_topics": ["Topic 1", "Topic 2", "Topic 3", "Topic 4", "Topic 5"]
}
` + "```" + `

Generate the related topics now:`)

	return b.String()
}
