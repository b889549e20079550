package models

// ReplyStatus tags how a reply was produced.
type ReplyStatus string

const (
	// ReplyOK is an answer built from complete context.
	ReplyOK ReplyStatus = "ok"
	// ReplyDegraded is an answer built while a context source failed.
	ReplyDegraded ReplyStatus = "degraded"
	// ReplyFatal carries an error message in place of an answer.
	ReplyFatal ReplyStatus = "fatal"
)

// Reply is the router's result for one chat turn. Text is always safe to
// show to the user; Cause is set for degraded and fatal replies.
type Reply struct {
	Status ReplyStatus
	Text   string
	Cause  error
}

func OK(text string) Reply {
	return Reply{Status: ReplyOK, Text: text}
}

func Degraded(text string, cause error) Reply {
	return Reply{Status: ReplyDegraded, Text: text, Cause: cause}
}

func Fatal(text string, cause error) Reply {
	return Reply{Status: ReplyFatal, Text: text, Cause: cause}
}

// ContextDigest is a best-effort text blob injected into a prompt. When the
// source failed, Text holds a readable placeholder and Cause the reason.
type ContextDigest struct {
	Source string
	Text   string
	Cause  error
}

// Degraded reports whether the digest stands in for a failed fetch.
func (d ContextDigest) Degraded() bool {
	return d.Cause != nil
}
