package keypress

import "testing"

func TestLayout_ConnectorsAndPresses(t *testing.T) {
	seq := Sequence{NewKey(Shift, ModNone), And, NewKey(Up, ModNone), After, Combo{NewKey(Edit, ModNone), NewKey(Opt, ModNone)}, Or, Touch, Hold, Midi}
	elements := Layout(seq)

	wantKinds := []ElementKind{ElementPress, ElementConnector, ElementPress, ElementConnector, ElementPress, ElementConnector, ElementConnector, ElementConnector, ElementConnector}
	if len(elements) != len(wantKinds) {
		t.Fatalf("expected %d elements, got %d", len(wantKinds), len(elements))
	}
	for i, kind := range wantKinds {
		if elements[i].Kind != kind {
			t.Errorf("element %d: expected %s, got %s", i, kind, elements[i].Kind)
		}
	}

	labels := map[int]string{1: "+", 3: "→", 5: "|", 7: "HOLD", 8: "MIDI"}
	for i, label := range labels {
		if elements[i].Label != label {
			t.Errorf("element %d: expected label %q, got %q", i, label, elements[i].Label)
		}
	}

	if len(elements[4].Keys) != 2 {
		t.Errorf("expected combo of 2 keys, got %d", len(elements[4].Keys))
	}
}

func TestLayout_RepeatAppliesToNextPressOnly(t *testing.T) {
	seq := Sequence{Repeat(2), Combo{NewKey(Edit, ModNone), NewKey(Opt, ModNone), NewKey(Shift, ModHold)}, After, NewKey(Play, ModNone)}
	elements := Layout(seq)

	if elements[0].Kind != ElementRepeat || elements[0].Label != "2x" {
		t.Fatalf("expected 2x repeat mark first, got %+v", elements[0])
	}

	group := elements[1]
	if group.Repeat != 2 {
		t.Errorf("expected repeat 2 on group, got %d", group.Repeat)
	}
	if group.Keys[0].Modifier != Mod2x {
		t.Errorf("expected first key 2x, got %q", group.Keys[0].Modifier)
	}
	if group.Keys[1].Modifier != Mod2xNotFirst {
		t.Errorf("expected second key 2x-not-first, got %q", group.Keys[1].Modifier)
	}
	if group.Keys[2].Modifier != ModHold {
		t.Errorf("expected explicit hold kept, got %q", group.Keys[2].Modifier)
	}

	last := elements[3]
	if last.Repeat != 0 || last.Keys[0].HasModifier() {
		t.Errorf("expected repeat reset after first press, got %+v", last)
	}
}

func TestLayout_DoesNotMutateInput(t *testing.T) {
	combo := Combo{NewKey(Edit, ModNone)}
	Layout(Sequence{Repeat(3), combo})
	if combo[0].HasModifier() {
		t.Error("expected input combo to be left untouched")
	}
}

func TestLayout_SkipsUnknownTokens(t *testing.T) {
	seq := Sequence{NewKey(Edit, ModNone), Unknown("before"), After, NewKey(Opt, ModNone)}
	elements := Layout(seq)
	if len(elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elements))
	}
	if elements[1].Kind != ElementConnector || elements[1].Connector != After {
		t.Errorf("expected after connector, got %+v", elements[1])
	}
}
