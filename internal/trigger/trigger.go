// Package trigger decides when a conversation has earned a deliverable
// generation. Generation is never fired on completeness alone: the user
// must ask for it, accept an offer the assistant just made, or give a
// short go-ahead once the phase is complete enough. The detector is a
// small state machine fed one conversation turn at a time.
package trigger

import "strings"

// State is the detector's position in the offer/confirm handshake.
type State string

const (
	// StateNormal: no offer on the table. Only an explicit request fires.
	StateNormal State = "normal"
	// StateOffered: the previous assistant turn offered to generate.
	// A short confirmation now counts as acceptance.
	StateOffered State = "offered"
	// StateTriggered: generation fired; the caller resets after acting.
	StateTriggered State = "triggered"
)

// DefaultThreshold is the overall completeness at which a bare
// confirmation is honored even without an outstanding offer. Explicit
// requests ignore it.
const DefaultThreshold = 80

// maxUtteranceWords guards against long sentences that merely contain a
// trigger phrase ("yes, but before you generate it let me explain...").
const maxUtteranceWords = 8

// explicitPhrases fire from any state, at any completeness. The user
// said make it; we make it.
var explicitPhrases = []string{
	"generate it",
	"generate the",
	"create it",
	"create the deliverable",
	"make the deliverable",
	"build it",
	"go ahead and generate",
	"yes, generate",
}

// confirmPhrases count as acceptance while an offer is outstanding, or
// on their own once completeness clears the threshold.
var confirmPhrases = []string{
	"yes",
	"yes please",
	"yeah",
	"sure",
	"ok",
	"okay",
	"do it",
	"go ahead",
	"sounds good",
	"please do",
}

// offerPhrases mark an assistant turn as an offer to generate.
var offerPhrases = []string{
	"shall i generate",
	"should i generate",
	"want me to generate",
	"would you like me to generate",
	"i can generate",
	"ready to generate",
	"shall i create the",
	"should i create the",
}

// Decision is the detector's verdict for one user turn, with the inputs
// that produced it kept for the audit trail.
type Decision struct {
	Fire         bool   `json:"fire"`
	Reason       string `json:"reason"`
	State        State  `json:"state"`
	Completeness int    `json:"overall_completeness_pct"`
	Phase        string `json:"phase,omitempty"`
	Utterance    string `json:"utterance"`
}

// Detector tracks the offer/confirm handshake for one conversation.
// Not safe for concurrent use; each conversation owns its detector.
type Detector struct {
	state     State
	threshold int
	recent    []State
}

// NewDetector returns a detector in the normal state with the default
// completeness threshold.
func NewDetector() *Detector {
	return NewDetectorWithThreshold(DefaultThreshold)
}

// NewDetectorWithThreshold overrides the confirmation threshold.
// Values outside [0,100] fall back to the default.
func NewDetectorWithThreshold(threshold int) *Detector {
	if threshold < 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Detector{state: StateNormal, threshold: threshold}
}

// State returns the current handshake state.
func (d *Detector) State() State {
	return d.state
}

// RecentStates returns the states after the last turns, most recent
// last, capped at three.
func (d *Detector) RecentStates() []State {
	out := make([]State, len(d.recent))
	copy(out, d.recent)
	return out
}

// ObserveAssistant feeds an assistant turn. If the turn reads as an
// offer to generate, a following short confirmation becomes acceptance.
func (d *Detector) ObserveAssistant(text string) {
	if d.state == StateTriggered {
		return
	}
	if containsAny(normalize(text), offerPhrases) {
		d.state = StateOffered
	} else {
		d.state = StateNormal
	}
	d.remember()
}

// ObserveUser feeds a user turn plus the phase's overall completeness
// and returns the verdict. The caller stamps Phase on the decision; the
// detector itself only tracks the handshake.
func (d *Detector) ObserveUser(text string, completeness int) Decision {
	dec := Decision{
		State:        d.state,
		Completeness: completeness,
		Utterance:    text,
	}

	norm := normalize(text)
	words := len(strings.Fields(norm))

	switch {
	case words == 0:
		dec.Reason = "empty utterance"
	case words > maxUtteranceWords:
		dec.Reason = "utterance too long to be a generation command"
	case containsAny(norm, explicitPhrases):
		dec.Fire = true
		dec.Reason = "explicit generation request"
	case containsAny(norm, confirmPhrases):
		switch {
		case d.state == StateOffered:
			dec.Fire = true
			dec.Reason = "offer confirmed"
		case completeness >= d.threshold:
			dec.Fire = true
			dec.Reason = "confirmation at sufficient completeness"
		default:
			dec.Reason = "confirmation without an offer or sufficient completeness"
		}
	default:
		dec.Reason = "no generation intent detected"
	}

	if dec.Fire {
		d.state = StateTriggered
	} else if d.state == StateOffered {
		// One user turn consumes the offer either way.
		d.state = StateNormal
	}
	dec.State = d.state
	d.remember()
	return dec
}

// Reset returns the detector to normal after the caller has acted on a
// triggered decision.
func (d *Detector) Reset() {
	d.state = StateNormal
	d.remember()
}

func (d *Detector) remember() {
	d.recent = append(d.recent, d.state)
	if len(d.recent) > 3 {
		d.recent = d.recent[len(d.recent)-3:]
	}
}

func normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

func containsAny(norm string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}
