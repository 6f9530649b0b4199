// Package wiki fetches Wikipedia articles and extracts structured content
// from their markup: title, summary, section labels, body text, a bounded
// set of heuristically classified entities, and infobox key/value pairs.
package wiki

import "errors"

// ErrFetch indicates the article markup could not be retrieved: a network
// failure, a non-success HTTP status, or an empty response body.
var ErrFetch = errors.New("article fetch failed")

// ErrExtraction indicates the fetched markup could not be turned into an
// article document: the main content region is missing or the extracted
// body text is too short to be a real article.
var ErrExtraction = errors.New("article extraction failed")
