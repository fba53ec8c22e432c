package agent

import "testing"

func TestExtract_PlainText(t *testing.T) {
	r := PlainText("  Here are some movies.  \n")
	if got := r.Extract(); got != "Here are some movies." {
		t.Errorf("Extract = %q", got)
	}
}

func TestExtract_StructuredLastMessage(t *testing.T) {
	r := Structured([]ResponseMessage{
		{Role: "assistant", Content: ""},
		{Role: "tool", Content: "Added 27205 to favourites."},
		{Role: "assistant", Content: "Done! Inception is now in your favorites. "},
	})
	if got := r.Extract(); got != "Done! Inception is now in your favorites." {
		t.Errorf("Extract = %q", got)
	}
}

func TestExtract_StructuredEmptyContent(t *testing.T) {
	r := Structured([]ResponseMessage{{Role: "assistant", Content: ""}})
	got := r.Extract()
	if got == "" {
		t.Error("Extract returned empty string, want displayable form of message")
	}
}

func TestExtract_StructuredNoMessages(t *testing.T) {
	r := Response{Kind: KindStructuredMessages, Raw: "whole response"}
	if got := r.Extract(); got != "whole response" {
		t.Errorf("Extract = %q", got)
	}
}

func TestExtract_Opaque(t *testing.T) {
	r := Opaque("  some unexpected payload ")
	if got := r.Extract(); got != "some unexpected payload" {
		t.Errorf("Extract = %q", got)
	}
}
