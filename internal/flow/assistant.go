package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AltairPartners/AltairIVR/internal/models"
)

// Spoken personas for the AI-backed sub-flows.
const (
	repPersona = "You are a friendly phone representative for Altair Partners, a creative agency " +
		"in Portland, Oregon offering branding, web design, and marketing services. " +
		"Answer the caller's question helpfully in two or three short spoken sentences. " +
		"Do not use markdown, lists, or emoji; your answer is read aloud over the phone."

	directorPersona = "You are the creative director of Altair Partners, a creative agency in " +
		"Portland, Oregon. Speak with warmth and creative insight about branding, design, and " +
		"marketing strategy. Answer in two or three short spoken sentences. " +
		"Do not use markdown, lists, or emoji; your answer is read aloud over the phone."
)

const msgAINotAvailable = "I'm sorry, our assistant isn't available right now. Returning to the main menu."

// registerAssistantSteps installs the representative and creative-director
// sub-flows plus the after-hours closed menu. The entry steps of the open-only
// sub-flows are gated so a call that straddles closing time lands on the
// closed menu instead.
func (c *Controller) registerAssistantSteps() {
	c.registerAskConfirm(askConfirmSpec{
		field:    FieldReason,
		ask:      models.StepAskReason,
		collect:  models.StepCollectReason,
		confirm:  models.StepConfirmReason,
		question: "Sure, I can help with that. What would you like to ask?",
		next:     models.StepRepAnswer,
	})
	c.handlers[models.StepAskReason] = c.gated(c.handlers[models.StepAskReason])

	c.register(models.StepRepAnswer, c.handleRepAnswer)
	c.register(models.StepRepQuestion, c.handleRepQuestion)
	c.register(models.StepDirectorIntro, c.gated(HandlerFunc(c.handleDirectorIntro)))
	c.register(models.StepDirectorQuestion, c.handleDirectorQuestion)
	c.register(models.StepClosedMenu, c.handleClosedMenu)
	c.register(models.StepClosedSelect, c.handleClosedSelect)
	c.register(models.StepVoicemailDone, c.handleVoicemailDone)
}

func (c *Controller) handleRepAnswer(ctx context.Context, sess Context, in Input) Outcome {
	reason := sess.Get(FieldReason)
	if reason == "" {
		return Redirect(models.StepAskReason)
	}
	answer, ok := c.askAI(ctx, repPersona, reason)
	if !ok {
		return RedirectWithMessage(msgAINotAvailable, models.StepMainMenu)
	}
	return Prompt(answer+" Is there anything else I can help with? You can ask another question, say menu, or say goodbye.",
		models.StepRepQuestion)
}

// handleRepQuestion loops on follow-up questions until the caller says
// goodbye, asks for the menu, or stops talking.
func (c *Controller) handleRepQuestion(ctx context.Context, sess Context, in Input) Outcome {
	question := in.Value()
	lower := strings.ToLower(question)
	switch {
	case question == "" || strings.Contains(lower, "goodbye") || strings.Contains(lower, "bye"):
		return Terminate(fmt.Sprintf("Thank you for calling %s. Goodbye.", c.businessName))
	case strings.Contains(lower, "menu"):
		return Redirect(models.StepMainMenu)
	}
	answer, ok := c.askAI(ctx, repPersona, question)
	if !ok {
		return RedirectWithMessage(msgAINotAvailable, models.StepMainMenu)
	}
	return Prompt(answer+" Anything else?", models.StepRepQuestion)
}

func (c *Controller) handleDirectorIntro(ctx context.Context, sess Context, in Input) Outcome {
	return Prompt("You're through to our creative director. What would you like to talk about?",
		models.StepDirectorQuestion)
}

func (c *Controller) handleDirectorQuestion(ctx context.Context, sess Context, in Input) Outcome {
	question := in.Value()
	lower := strings.ToLower(question)
	switch {
	case question == "" || strings.Contains(lower, "goodbye") || strings.Contains(lower, "bye"):
		return Terminate(fmt.Sprintf("It was a pleasure. Thank you for calling %s. Goodbye.", c.businessName))
	case strings.Contains(lower, "menu"):
		return Redirect(models.StepMainMenu)
	}
	answer, ok := c.askAI(ctx, directorPersona, question)
	if !ok {
		return RedirectWithMessage(msgAINotAvailable, models.StepMainMenu)
	}
	return Prompt(answer+" What else is on your mind?", models.StepDirectorQuestion)
}

// askAI calls the responder, mapping a nil responder and completion errors to
// a single not-available signal.
func (c *Controller) askAI(ctx context.Context, persona, question string) (string, bool) {
	if c.ai == nil {
		slog.Warn("Controller.askAI: no AI responder configured")
		return "", false
	}
	answer, err := c.ai.GenerateReply(ctx, persona, question)
	if err != nil {
		slog.Error("Controller.askAI: completion failed", "error", err)
		return "", false
	}
	return answer, true
}

func (c *Controller) handleClosedMenu(ctx context.Context, sess Context, in Input) Outcome {
	_, untilOpen := c.hours.TimeUntilOpen(c.now())
	say := fmt.Sprintf("We're currently closed. %s. "+
		"Press 1 to request a callback when we open, or press 2 to leave a voice message.", untilOpen)
	return PromptDigits(say, models.StepClosedSelect, 1).WithRetry(models.StepClosedMenu)
}

func (c *Controller) handleClosedSelect(ctx context.Context, sess Context, in Input) Outcome {
	switch in.Digits {
	case "1":
		c.logCall(sess.Phone, models.ActionAfterHoursCallback, nil)
		c.notifier.NotifyAdmins(ctx, fmt.Sprintf("After-hours callback requested by %s", sess.Phone))
		return Terminate("Thank you. We'll call you back when we open. Goodbye.")
	case "2":
		return Record("Please leave your message after the tone. Press any key when you're done.",
			models.StepVoicemailDone)
	default:
		return Redirect(models.StepClosedMenu)
	}
}

func (c *Controller) handleVoicemailDone(ctx context.Context, sess Context, in Input) Outcome {
	c.logCall(sess.Phone, models.ActionVoiceMessage, map[string]string{
		"recording_url": in.RecordingURL,
	})
	c.notifier.NotifyAdmins(ctx, fmt.Sprintf("Voice message from %s: %s", sess.Phone, in.RecordingURL))
	return Terminate("Thank you for your message. We'll get back to you when we open. Goodbye.")
}
