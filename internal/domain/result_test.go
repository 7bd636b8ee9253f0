package domain

import "testing"

func TestNoReplyHasNoEnvelopes(t *testing.T) {
	r := NoReply()
	if r.Kind() != ResultNoDelivery {
		t.Errorf("unexpected kind %v", r.Kind())
	}
	if got := r.Envelopes(); len(got) != 0 {
		t.Errorf("expected no envelopes, got %d", len(got))
	}
}

func TestReplySingleEnvelope(t *testing.T) {
	rm := NewTextMessage("chat", "oi")
	r := Reply(rm)

	got := r.Envelopes()
	if len(got) != 1 || got[0] != rm {
		t.Fatalf("expected the single envelope back, got %v", got)
	}
}

func TestReplyNilIsEmpty(t *testing.T) {
	if got := Reply(nil).Envelopes(); len(got) != 0 {
		t.Errorf("nil single should normalize to empty, got %d", len(got))
	}
}

func TestRepliesKeepOrderAndDropNils(t *testing.T) {
	first := NewTextMessage("chat", "1")
	second := NewTextMessage("chat", "2")

	got := Replies(first, nil, second).Envelopes()
	if len(got) != 2 {
		t.Fatalf("expected two envelopes, got %d", len(got))
	}
	if got[0] != first || got[1] != second {
		t.Error("order not preserved")
	}
}

func TestZeroValueResultIsNoDelivery(t *testing.T) {
	var r Result
	if r.Kind() != ResultNoDelivery {
		t.Errorf("zero value must be no delivery, got %v", r.Kind())
	}
	if got := r.Envelopes(); len(got) != 0 {
		t.Errorf("zero value has no envelopes, got %d", len(got))
	}
}

func TestReturnMessageValid(t *testing.T) {
	cases := []struct {
		name string
		rm   *ReturnMessage
		want bool
	}{
		{"nil", nil, false},
		{"empty", &ReturnMessage{}, false},
		{"no payload", &ReturnMessage{ChatID: "chat"}, false},
		{"no destination", &ReturnMessage{Text: "oi"}, false},
		{"text", NewTextMessage("chat", "oi"), true},
		{"media", NewMediaMessage("chat", &Media{Path: "/tmp/a.mp4"}), true},
	}

	for _, tc := range cases {
		if got := tc.rm.Valid(); got != tc.want {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
