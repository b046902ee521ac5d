package flow

import "github.com/AltairPartners/AltairIVR/internal/models"

// OutcomeKind classifies what the call provider should do next.
type OutcomeKind int

const (
	// OutcomePrompt speaks text, gathers input, and posts it to the next step.
	OutcomePrompt OutcomeKind = iota
	// OutcomeRedirect continues to the next step with no user interaction.
	OutcomeRedirect
	// OutcomeTerminate speaks text and ends the call.
	OutcomeTerminate
	// OutcomeRecord speaks text, records audio, and posts the result to the next step.
	OutcomeRecord
)

// Outcome is what a step handler returns: the instruction for the call
// provider plus the session context patch accumulated by this step.
type Outcome struct {
	Kind  OutcomeKind
	Say   string
	Next  models.StepType
	Retry models.StepType // where to go when gather input times out; defaults to Next
	Patch map[string]string
	// NumDigits limits a gather to a fixed digit count; zero accepts
	// free-form speech and digits.
	NumDigits int
}

// Prompt speaks text, then gathers speech or digits for the next step.
func Prompt(say string, next models.StepType) Outcome {
	return Outcome{Kind: OutcomePrompt, Say: say, Next: next}
}

// PromptDigits speaks text, then gathers a fixed number of digits for the next step.
func PromptDigits(say string, next models.StepType, numDigits int) Outcome {
	return Outcome{Kind: OutcomePrompt, Say: say, Next: next, NumDigits: numDigits}
}

// Redirect continues immediately to the next step.
func Redirect(next models.StepType) Outcome {
	return Outcome{Kind: OutcomeRedirect, Next: next}
}

// RedirectWithMessage speaks text, then continues to the next step.
func RedirectWithMessage(say string, next models.StepType) Outcome {
	return Outcome{Kind: OutcomeRedirect, Say: say, Next: next}
}

// Terminate speaks text and ends the call.
func Terminate(say string) Outcome {
	return Outcome{Kind: OutcomeTerminate, Say: say}
}

// Record speaks text, then records the caller for the next step.
func Record(say string, next models.StepType) Outcome {
	return Outcome{Kind: OutcomeRecord, Say: say, Next: next}
}

// WithPatch adds a session context field collected by this step.
func (o Outcome) WithPatch(key, value string) Outcome {
	patch := make(map[string]string, len(o.Patch)+1)
	for k, v := range o.Patch {
		patch[k] = v
	}
	patch[key] = value
	o.Patch = patch
	return o
}

// WithRetry overrides the timeout fallback step for a prompt.
func (o Outcome) WithRetry(step models.StepType) Outcome {
	o.Retry = step
	return o
}

// RetryStep returns the step to fall back to when no input arrives.
func (o Outcome) RetryStep() models.StepType {
	if o.Retry != "" {
		return o.Retry
	}
	return o.Next
}
