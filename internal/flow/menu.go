package flow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AltairPartners/AltairIVR/internal/models"
)

const menuText = "Press 1 to book, cancel, or reschedule an appointment. " +
	"Press 2 to speak with a representative. " +
	"Press 3 to request a callback. " +
	"Press 4 for partnership inquiries. " +
	"Press 5 to ask our creative director."

// registerMenuSteps installs the welcome step, the main menu, appointment
// management, and the callback and partnership sub-flows.
func (c *Controller) registerMenuSteps() {
	c.register(models.StepWelcome, c.handleWelcome)
	c.register(models.StepMainMenu, c.handleMainMenu)
	c.register(models.StepMenuSelect, c.handleMenuSelect)
	c.register(models.StepManageAppointment, c.handleManageAppointment)
	c.register(models.StepManageSelect, c.handleManageSelect)
	c.register(models.StepAskPartnership, c.handleAskPartnership)
	c.register(models.StepCollectPartnership, c.handleCollectPartnership)
}

func (c *Controller) handleWelcome(ctx context.Context, sess Context, in Input) Outcome {
	isOpen := c.hours.IsOpen(c.now())
	c.logCall(sess.Phone, models.ActionCallReceived, map[string]string{
		"is_open": strconv.FormatBool(isOpen),
	})
	greeting := fmt.Sprintf("Thank you for calling %s, your creative agency in %s. ", c.businessName, c.hours.Location())
	return PromptDigits(greeting+menuText, models.StepMenuSelect, 1).WithRetry(models.StepMainMenu)
}

func (c *Controller) handleMainMenu(ctx context.Context, sess Context, in Input) Outcome {
	return PromptDigits(menuText, models.StepMenuSelect, 1).WithRetry(models.StepMainMenu)
}

func (c *Controller) handleMenuSelect(ctx context.Context, sess Context, in Input) Outcome {
	switch in.Digits {
	case "1":
		appt, err := c.store.FindAppointment(sess.Phone)
		if err != nil {
			return Terminate(msgApology)
		}
		if appt != nil {
			return Redirect(models.StepManageAppointment)
		}
		return RedirectWithMessage("Great, let's book your appointment.", models.StepAskName)
	case "2":
		c.logCall(sess.Phone, models.ActionRepresentative, nil)
		if !c.hours.IsOpen(c.now()) {
			return Redirect(models.StepClosedMenu)
		}
		return Redirect(models.StepAskReason)
	case "3":
		c.logCall(sess.Phone, models.ActionCallbackRequested, nil)
		c.notifier.NotifyAdmins(ctx, fmt.Sprintf("Callback requested by %s", sess.Phone))
		return Terminate("Thank you. Our team will call you back as soon as possible. Goodbye.")
	case "4":
		c.logCall(sess.Phone, models.ActionPartnershipInquiry, nil)
		return Redirect(models.StepAskPartnership)
	case "5":
		c.logCall(sess.Phone, models.ActionCreativeDirector, nil)
		if !c.hours.IsOpen(c.now()) {
			return Redirect(models.StepClosedMenu)
		}
		return Redirect(models.StepDirectorIntro)
	default:
		return PromptDigits("I didn't recognize that choice. "+menuText, models.StepMenuSelect, 1).
			WithRetry(models.StepMainMenu)
	}
}

func (c *Controller) handleManageAppointment(ctx context.Context, sess Context, in Input) Outcome {
	appt, err := c.store.FindAppointment(sess.Phone)
	if err != nil {
		return Terminate(msgApology)
	}
	if appt == nil {
		return RedirectWithMessage("I couldn't find your appointment anymore. Let's start over.", models.StepMainMenu)
	}
	say := fmt.Sprintf("You already have an appointment for %s at %s. "+
		"Press 1 to cancel it, press 2 to reschedule, or press 3 to return to the main menu.", appt.Date, appt.Time)
	return PromptDigits(say, models.StepManageSelect, 1).WithRetry(models.StepManageAppointment)
}

func (c *Controller) handleManageSelect(ctx context.Context, sess Context, in Input) Outcome {
	switch in.Digits {
	case "1":
		if _, err := c.store.DeleteAppointment(sess.Phone); err != nil {
			return Terminate(msgApology)
		}
		c.logCall(sess.Phone, models.ActionAppointmentCanceled, nil)
		c.notifier.NotifyAdmins(ctx, fmt.Sprintf("Appointment cancelled by %s", sess.Phone))
		return Terminate("Your appointment has been cancelled. Thank you for letting us know. Goodbye.")
	case "2":
		// Reschedule is delete-then-rebook: drop the old appointment and
		// walk the full booking sub-flow again.
		if _, err := c.store.DeleteAppointment(sess.Phone); err != nil {
			return Terminate(msgApology)
		}
		c.logCall(sess.Phone, models.ActionAppointmentRebooked, nil)
		return RedirectWithMessage("Okay, let's find you a new time.", models.StepAskName)
	case "3":
		return Redirect(models.StepMainMenu)
	default:
		return Redirect(models.StepManageAppointment)
	}
}

func (c *Controller) handleAskPartnership(ctx context.Context, sess Context, in Input) Outcome {
	return Prompt("Please briefly describe the partnership you have in mind.", models.StepCollectPartnership)
}

func (c *Controller) handleCollectPartnership(ctx context.Context, sess Context, in Input) Outcome {
	detail := in.Value()
	if detail == "" {
		return Prompt("I didn't catch that. Please briefly describe the partnership you have in mind.", models.StepCollectPartnership)
	}
	c.notifier.NotifyAdmins(ctx, fmt.Sprintf("Partnership inquiry from %s: %s", sess.Phone, detail))
	return Terminate("Thank you. Our partnerships team will review your inquiry and reach out soon. Goodbye.")
}
