package llm

import "context"

type purposeKey struct{}

// Purpose labels a model call in the event log, e.g. "exam-gen".
type Purpose = string

const (
	// PurposeExamGen labels one question batch.
	PurposeExamGen Purpose = "exam-gen"

	// PurposeUnknown is recorded for calls made without WithPurpose.
	PurposeUnknown Purpose = "unknown"
)

// WithPurpose labels every model call made with the returned context.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if v, ok := ctx.Value(purposeKey{}).(Purpose); ok && v != "" {
		return v
	}
	return PurposeUnknown
}
