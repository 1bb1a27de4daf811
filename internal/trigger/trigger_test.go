package trigger

import "testing"

func TestExplicitRequest_FiresAtAnyCompleteness(t *testing.T) {
	d := NewDetector()
	dec := d.ObserveUser("generate it", 10)
	if !dec.Fire {
		t.Errorf("explicit request should fire even at 10%%: %+v", dec)
	}
	if dec.State != StateTriggered {
		t.Errorf("state = %s, want triggered", dec.State)
	}
}

func TestConfirmation_FiresAfterOfferAboveThreshold(t *testing.T) {
	d := NewDetector()
	d.ObserveAssistant("The SIPOC looks nearly complete. Shall I generate it now?")
	if d.State() != StateOffered {
		t.Fatalf("state after offer = %s, want offered", d.State())
	}

	dec := d.ObserveUser("yes", 85)
	if !dec.Fire {
		t.Errorf("confirmation after offer at 85%% should fire: %+v", dec)
	}
}

func TestConfirmation_BelowThresholdWithoutOfferDoesNotFire(t *testing.T) {
	d := NewDetector()
	dec := d.ObserveUser("yes", 40)
	if dec.Fire {
		t.Errorf("bare confirmation at 40%% with no offer must not fire: %+v", dec)
	}
	if dec.Reason != "confirmation without an offer or sufficient completeness" {
		t.Errorf("reason = %q", dec.Reason)
	}
}

func TestConfirmation_AtThresholdFiresWithoutOffer(t *testing.T) {
	d := NewDetector()
	dec := d.ObserveUser("yes", 85)
	if !dec.Fire {
		t.Errorf("confirmation at 85%% should fire even from normal: %+v", dec)
	}
	if dec.Reason != "confirmation at sufficient completeness" {
		t.Errorf("reason = %q", dec.Reason)
	}
}

func TestConfirmation_AfterOfferFiresBelowThreshold(t *testing.T) {
	d := NewDetector()
	d.ObserveAssistant("Shall I generate the SIPOC?")
	dec := d.ObserveUser("yes", 40)
	if !dec.Fire {
		t.Errorf("confirming an outstanding offer should fire at any completeness: %+v", dec)
	}
	if dec.Reason != "offer confirmed" {
		t.Errorf("reason = %q", dec.Reason)
	}
}

func TestLongUtterance_NeverFires(t *testing.T) {
	d := NewDetector()
	d.ObserveAssistant("Shall I generate the SIPOC?")
	dec := d.ObserveUser("yes but before you generate it I want to double check the supplier list with Maria", 95)
	if dec.Fire {
		t.Errorf("long utterance must not fire even with trigger phrases: %+v", dec)
	}
	if dec.Reason != "utterance too long to be a generation command" {
		t.Errorf("reason = %q", dec.Reason)
	}
}

func TestOffer_ConsumedByOneUserTurn(t *testing.T) {
	d := NewDetector()
	d.ObserveAssistant("Shall I generate the SIPOC?")
	d.ObserveUser("tell me more about the outputs first", 40)
	if d.State() != StateNormal {
		t.Errorf("state = %s, offer should be consumed by the reply", d.State())
	}

	// A confirmation on the next turn no longer rides on the offer, and
	// at 40% it cannot fire on completeness either.
	dec := d.ObserveUser("yes", 40)
	if dec.Fire {
		t.Error("stale confirmation must not fire after the offer lapsed")
	}
}

func TestOffer_RenewedByAnotherOffer(t *testing.T) {
	d := NewDetector()
	d.ObserveAssistant("Shall I generate the SIPOC?")
	d.ObserveUser("hold on", 85)
	d.ObserveAssistant("No problem. Ready to generate whenever you are.")
	dec := d.ObserveUser("ok go ahead", 85)
	if !dec.Fire {
		t.Errorf("confirmation after renewed offer should fire: %+v", dec)
	}
}

func TestAssistantTurnWithoutOffer_ClearsOffered(t *testing.T) {
	d := NewDetector()
	d.ObserveAssistant("Shall I generate the SIPOC?")
	d.ObserveAssistant("Here is a summary of what we have so far.")
	if d.State() != StateNormal {
		t.Errorf("state = %s, non-offer assistant turn should clear the offer", d.State())
	}
}

func TestEmptyUtterance(t *testing.T) {
	d := NewDetector()
	dec := d.ObserveUser("   ", 90)
	if dec.Fire || dec.Reason != "empty utterance" {
		t.Errorf("empty utterance: %+v", dec)
	}
}

func TestReset_ReturnsToNormal(t *testing.T) {
	d := NewDetector()
	d.ObserveUser("generate it", 90)
	d.Reset()
	if d.State() != StateNormal {
		t.Errorf("state after reset = %s, want normal", d.State())
	}

	dec := d.ObserveUser("yes", 40)
	if dec.Fire {
		t.Error("below-threshold confirmation after reset must not fire without a fresh offer")
	}
}

func TestTriggered_AssistantTurnsAreInert(t *testing.T) {
	d := NewDetector()
	d.ObserveUser("generate it", 90)
	d.ObserveAssistant("Generating the SIPOC now.")
	if d.State() != StateTriggered {
		t.Errorf("state = %s, triggered should hold until Reset", d.State())
	}
}

func TestCustomThreshold(t *testing.T) {
	d := NewDetectorWithThreshold(50)
	if dec := d.ObserveUser("yes", 60); !dec.Fire {
		t.Errorf("60%% should clear a threshold of 50: %+v", dec)
	}
}

func TestInvalidThresholdFallsBack(t *testing.T) {
	d := NewDetectorWithThreshold(150)
	if dec := d.ObserveUser("yes", 85); !dec.Fire {
		t.Errorf("threshold should fall back to %d: %+v", DefaultThreshold, dec)
	}
}

func TestRecentStates_CappedAtThree(t *testing.T) {
	d := NewDetector()
	d.ObserveAssistant("hello")
	d.ObserveUser("hi", 0)
	d.ObserveAssistant("shall i generate the sipoc?")
	d.ObserveUser("yes", 90)

	recent := d.RecentStates()
	if len(recent) != 3 {
		t.Fatalf("recent states = %d, want 3", len(recent))
	}
	if recent[2] != StateTriggered {
		t.Errorf("last state = %s, want triggered", recent[2])
	}
}

func TestDecision_CarriesAuditFields(t *testing.T) {
	d := NewDetector()
	dec := d.ObserveUser("generate it", 42)
	if dec.Completeness != 42 {
		t.Errorf("completeness = %d, want 42", dec.Completeness)
	}
	if dec.Utterance != "generate it" {
		t.Errorf("utterance = %q", dec.Utterance)
	}
	if dec.Reason == "" {
		t.Error("decision must carry a reason")
	}
}
