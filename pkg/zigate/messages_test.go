package zigate

import "testing"

func TestMessageKindIsKnown(t *testing.T) {
	if !KindGetVersion.IsKnown() {
		t.Error("KindGetVersion should be known")
	}
	if MessageKind(0xBEEF).IsKnown() {
		t.Error("arbitrary code should not be known")
	}
}

func TestMessageKindString(t *testing.T) {
	if got := KindVersionList.String(); got != "VersionList" {
		t.Errorf("String() = %q, want %q", got, "VersionList")
	}
	if got := MessageKind(0xBEEF).String(); got != "Unknown(0xBEEF)" {
		t.Errorf("String() = %q, want %q", got, "Unknown(0xBEEF)")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(0x8010) != KindVersionList {
		t.Errorf("KindOf(0x8010) = %v, want KindVersionList", KindOf(0x8010))
	}
}
