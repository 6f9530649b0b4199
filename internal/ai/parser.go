package ai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/abhich05/wikiquiz/internal/models"
)

// Defaults applied while normalizing accepted questions.
const (
	fallbackSection     = "General"
	fallbackExplanation = "Based on article content."
)

// Related-topic filtering bounds.
const (
	maxRelatedTopics   = 8
	minTopicNameLength = 3
)

var (
	trailingCommaObjRe = regexp.MustCompile(`,\s*}`)
	trailingCommaArrRe = regexp.MustCompile(`,\s*]`)
)

// extractorFunc attempts to pull a JSON payload out of free-form model
// text. The key names the expected top-level field.
type extractorFunc func(text, key string) (string, bool)

// jsonExtractors is the ordered extraction chain. Strategies are tried in
// order and the first match wins; adding a strategy is a pure addition.
var jsonExtractors = []extractorFunc{
	extractFencedBlock,
	extractBracedWithKey,
	extractWholeObject,
}

// extractJSON locates the JSON payload in untrusted model output using the
// extraction chain. It fails with ErrResponseFormat when no strategy
// matches.
func extractJSON(text, key string) (string, error) {
	trimmed := strings.TrimSpace(text)
	for _, extract := range jsonExtractors {
		if payload, ok := extract(trimmed, key); ok {
			return payload, nil
		}
	}
	return "", fmt.Errorf("%w: expected key %q", ErrResponseFormat, key)
}

// extractFencedBlock returns the content of the first ``` code fence,
// tolerating an optional "json" language tag.
func extractFencedBlock(text, _ string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	rest = strings.TrimPrefix(rest, "json")

	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// extractBracedWithKey scans for the first brace-delimited substring that
// contains the quoted key. The scan is a flat depth counter over the raw
// bytes, not a full JSON parse; the repaired candidate still has to
// survive json.Unmarshal afterwards.
func extractBracedWithKey(text, key string) (string, bool) {
	quoted := `"` + key + `"`

	offset := 0
	for {
		open := strings.IndexByte(text[offset:], '{')
		if open < 0 {
			return "", false
		}
		open += offset

		depth := 0
		for i := open; i < len(text); i++ {
			switch text[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := text[open : i+1]
					if strings.Contains(candidate, quoted) {
						return candidate, true
					}
					i = len(text) // inner objects were covered by this scan
				}
			}
		}
		offset = open + 1
	}
}

// extractWholeObject accepts the entire response when it already starts
// with a brace.
func extractWholeObject(text, _ string) (string, bool) {
	if strings.HasPrefix(text, "{") {
		return text, true
	}
	return "", false
}

// repairJSON fixes the defects models most often introduce: embedded line
// breaks inside the payload and trailing commas before a closing brace or
// bracket.
func repairJSON(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = trailingCommaObjRe.ReplaceAllString(s, "}")
	s = trailingCommaArrRe.ReplaceAllString(s, "]")
	return s
}

// rawQuestion is one unvalidated candidate from the model's response.
type rawQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
	Section     string   `json:"section"`
}

// ParseQuizResponse turns raw model output into validated questions.
//
// Each candidate must pass the acceptance gate: question and answer
// present, exactly 4 options, and the answer equal to one option by exact
// match. Failing candidates are dropped with a log line, not fatal.
// Accepted candidates are normalized: difficulty coerced into the three
// known bands (defaulting to medium), section defaulted to the article's
// first known section, explanation defaulted to a placeholder.
//
// It fails with ErrResponseFormat when no JSON can be extracted or parsed,
// and with ErrNoValidQuestions when parsing succeeded but nothing survived
// the gate.
func ParseQuizResponse(text string, sections []string) ([]models.Question, error) {
	payload, err := extractJSON(text, "questions")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(repairJSON(payload)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseFormat, err)
	}

	defaultSection := fallbackSection
	if len(sections) > 0 {
		defaultSection = sections[0]
	}

	var questions []models.Question
	for i, raw := range parsed.Questions {
		q, ok := validateQuestion(raw, defaultSection)
		if !ok {
			slog.Warn("dropping invalid question", "index", i+1)
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %d candidates rejected", ErrNoValidQuestions, len(parsed.Questions))
	}

	return questions, nil
}

// validateQuestion applies the acceptance gate to one candidate and
// normalizes it into a Question.
func validateQuestion(raw rawQuestion, defaultSection string) (models.Question, bool) {
	if raw.Question == "" || raw.Answer == "" || len(raw.Options) != 4 {
		return models.Question{}, false
	}

	answerMatches := false
	for _, opt := range raw.Options {
		if raw.Answer == opt {
			answerMatches = true
			break
		}
	}
	if !answerMatches {
		return models.Question{}, false
	}

	difficulty := models.Difficulty(strings.ToLower(strings.TrimSpace(raw.Difficulty)))
	if !difficulty.Valid() {
		difficulty = models.DifficultyMedium
	}

	section := strings.TrimSpace(raw.Section)
	if section == "" {
		section = defaultSection
	}

	explanation := strings.TrimSpace(raw.Explanation)
	if explanation == "" {
		explanation = fallbackExplanation
	}

	return models.Question{
		Question:    raw.Question,
		Options:     raw.Options,
		Answer:      raw.Answer,
		Difficulty:  difficulty,
		Explanation: explanation,
		Section:     section,
	}, true
}

// ParseRelatedTopics extracts the related-topic names from raw model
// output. Non-string entries and names shorter than 3 characters after
// trimming are filtered out, and the list is truncated to 8 entries.
func ParseRelatedTopics(text string) ([]string, error) {
	payload, err := extractJSON(text, "related_topics")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		RelatedTopics []any `json:"related_topics"`
	}
	if err := json.Unmarshal([]byte(repairJSON(payload)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseFormat, err)
	}

	var topics []string
	for _, entry := range parsed.RelatedTopics {
		name, ok := entry.(string)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if len(name) < minTopicNameLength {
			continue
		}
		topics = append(topics, name)
		if len(topics) == maxRelatedTopics {
			break
		}
	}

	return topics, nil
}
