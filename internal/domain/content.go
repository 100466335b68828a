package domain

import "fmt"

// ContentType identifies the kind of content a generation request produces.
// It is also used as the task ID prefix for the corresponding background task.
type ContentType string

// Supported content types.
const (
	ContentTypeArticle    ContentType = "article"
	ContentTypeSummary    ContentType = "summary"
	ContentTypeSocialPost ContentType = "social_post"
)

// Valid reports whether the content type is one of the supported values.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeArticle, ContentTypeSummary, ContentTypeSocialPost:
		return true
	default:
		return false
	}
}

// ContentRequest describes one unit of content to generate.
type ContentRequest struct {
	// ContentType selects the kind of content to produce.
	ContentType ContentType

	// Topic is the subject the content should cover.
	Topic string

	// Instructions are optional free-form steering hints for the generator.
	Instructions string
}

// Validate checks that the request is well-formed.
func (r ContentRequest) Validate() error {
	if !r.ContentType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidContentType, r.ContentType)
	}
	if r.Topic == "" {
		return ErrEmptyTopic
	}
	return nil
}

// GeneratedContent is the result produced by a content generation task.
type GeneratedContent struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	WordCount int    `json:"word_count"`
	Model     string `json:"model"`
}
