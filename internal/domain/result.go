package domain

// ResultKind tags the shape of a handler's return value.
type ResultKind int

const (
	// ResultNoDelivery means the handler already performed delivery itself.
	ResultNoDelivery ResultKind = iota
	ResultSingle
	ResultMultiple
)

// Result is the tagged union returned by command handlers: no delivery, a
// single ReturnMessage, or an ordered sequence of them.
type Result struct {
	kind     ResultKind
	single   *ReturnMessage
	multiple []*ReturnMessage
}

func NoReply() Result {
	return Result{kind: ResultNoDelivery}
}

func Reply(rm *ReturnMessage) Result {
	return Result{kind: ResultSingle, single: rm}
}

func Replies(rms ...*ReturnMessage) Result {
	return Result{kind: ResultMultiple, multiple: rms}
}

func (r Result) Kind() ResultKind {
	return r.kind
}

// Envelopes normalizes the result into an ordered slice for the delivery
// path. Order within a multiple result is preserved.
func (r Result) Envelopes() []*ReturnMessage {
	switch r.kind {
	case ResultSingle:
		if r.single == nil {
			return nil
		}
		return []*ReturnMessage{r.single}
	case ResultMultiple:
		out := make([]*ReturnMessage, 0, len(r.multiple))
		for _, rm := range r.multiple {
			if rm != nil {
				out = append(out, rm)
			}
		}
		return out
	default:
		return nil
	}
}
