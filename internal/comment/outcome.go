package comment

import "net/url"

// Page query parameters set by the backend after a rejected submission.
const (
	ParamCommentPosted = "comment-posted"
	ParamReason        = "reason"
)

// Reason explains why a submission was rejected.
type Reason int

const (
	ReasonOther Reason = iota
	ReasonScoreTooLow
	ReasonEmptyMessage
)

// Wire tokens for the reason parameter.
const (
	ReasonTokenScore = "score"
	ReasonTokenEmpty = "empty"
)

// User-facing rejection messages.
const (
	MessageScoreTooLow  = "Your sentiment score was too low!"
	MessageEmptyMessage = "Your message was empty!"
	MessageOther        = "There was an error posting your comment. Please try again!"
)

// PostOutcome is the result of the visitor's previous submission.
type PostOutcome struct {
	Posted bool
	Reason Reason
}

// ParseReason maps a reason token to a Reason.
func ParseReason(token string) Reason {
	switch token {
	case ReasonTokenScore:
		return ReasonScoreTooLow
	case ReasonTokenEmpty:
		return ReasonEmptyMessage
	default:
		return ReasonOther
	}
}

// Message returns the notice shown for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonScoreTooLow:
		return MessageScoreTooLow
	case ReasonEmptyMessage:
		return MessageEmptyMessage
	default:
		return MessageOther
	}
}

// OutcomeFromValues reads the outcome from page query parameters.
// ok is false when comment-posted is absent.
func OutcomeFromValues(v url.Values) (PostOutcome, bool) {
	if !v.Has(ParamCommentPosted) {
		return PostOutcome{}, false
	}
	if v.Get(ParamCommentPosted) != "false" {
		return PostOutcome{Posted: true}, true
	}
	return PostOutcome{Reason: ParseReason(v.Get(ParamReason))}, true
}

// RejectionMessage returns the notice for a rejected submission, if any.
func RejectionMessage(v url.Values) (string, bool) {
	outcome, ok := OutcomeFromValues(v)
	if !ok || outcome.Posted {
		return "", false
	}
	return outcome.Reason.Message(), true
}
