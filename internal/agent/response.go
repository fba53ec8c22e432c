package agent

import (
	"fmt"
	"strings"
)

// ResponseKind discriminates the shapes a model response can take.
type ResponseKind int

const (
	// KindPlainText is a bare string reply.
	KindPlainText ResponseKind = iota
	// KindStructuredMessages is an ordered message transcript; the reply is
	// the content of the last message.
	KindStructuredMessages
	// KindOpaque is anything else, carried as its displayable form.
	KindOpaque
)

// ResponseMessage is one entry of a structured response transcript.
type ResponseMessage struct {
	Role    string
	Content string
}

// Response is the decoded result of one agent invocation. The shape is
// decided once at the runtime boundary so callers only deal with Extract.
type Response struct {
	Kind     ResponseKind
	Text     string
	Messages []ResponseMessage
	Raw      string
}

// PlainText wraps a bare string reply.
func PlainText(text string) Response {
	return Response{Kind: KindPlainText, Text: text}
}

// Structured wraps a message transcript.
func Structured(messages []ResponseMessage) Response {
	return Response{Kind: KindStructuredMessages, Messages: messages}
}

// Opaque wraps a response of unknown shape.
func Opaque(raw string) Response {
	return Response{Kind: KindOpaque, Raw: raw}
}

// Extract returns the display text of the response: the trimmed text for a
// plain reply, the trimmed content of the last message for a structured one
// (falling back to the message's displayable form when it has no content,
// and to the whole response when there are no messages), or the trimmed raw
// form for anything opaque.
func (r Response) Extract() string {
	switch r.Kind {
	case KindPlainText:
		return strings.TrimSpace(r.Text)
	case KindStructuredMessages:
		if len(r.Messages) == 0 {
			return strings.TrimSpace(r.Raw)
		}
		last := r.Messages[len(r.Messages)-1]
		if last.Content != "" {
			return strings.TrimSpace(last.Content)
		}
		return strings.TrimSpace(fmt.Sprintf("%+v", last))
	default:
		return strings.TrimSpace(r.Raw)
	}
}
