package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AltairPartners/AltairIVR/internal/models"
)

// askConfirmSpec parameterizes the ask -> confirm -> advance-or-retry pattern
// shared by every free-text question in the flow.
type askConfirmSpec struct {
	field    string
	ask      models.StepType
	collect  models.StepType
	confirm  models.StepType
	question string
	next     models.StepType
}

// registerAskConfirm installs the three steps of one confirmed question.
// Empty input re-asks the same question; a "no" at the confirmation returns
// to the original question, never to the next one.
func (c *Controller) registerAskConfirm(spec askConfirmSpec) {
	c.register(spec.ask, func(ctx context.Context, sess Context, in Input) Outcome {
		return Prompt(spec.question, spec.collect)
	})
	c.register(spec.collect, func(ctx context.Context, sess Context, in Input) Outcome {
		value := in.Value()
		if value == "" {
			return Prompt("I didn't catch that. "+spec.question, spec.collect)
		}
		return Prompt(confirmQuestion(value), spec.confirm).WithPatch(spec.field, value)
	})
	c.register(spec.confirm, func(ctx context.Context, sess Context, in Input) Outcome {
		switch {
		case isYes(in):
			return Redirect(spec.next)
		case isNo(in):
			return Prompt(spec.question, spec.collect)
		default:
			return Prompt(confirmQuestion(sess.Get(spec.field)), spec.confirm)
		}
	})
}

func confirmQuestion(value string) string {
	return fmt.Sprintf("You said %s. Press 1 or say yes to confirm, or press 2 or say no to try again.", value)
}

func isYes(in Input) bool {
	if in.Digits == "1" {
		return true
	}
	speech := strings.ToLower(in.Speech)
	return strings.Contains(speech, "yes") || strings.Contains(speech, "yeah") || strings.Contains(speech, "correct")
}

func isNo(in Input) bool {
	if in.Digits == "2" {
		return true
	}
	return strings.Contains(strings.ToLower(in.Speech), "no")
}

// registerBookingSteps installs the booking sub-flow: three confirmed
// questions, the date offer, the time question, and the save step.
func (c *Controller) registerBookingSteps() {
	c.registerAskConfirm(askConfirmSpec{
		field:    FieldName,
		ask:      models.StepAskName,
		collect:  models.StepCollectName,
		confirm:  models.StepConfirmName,
		question: "What's your name?",
		next:     models.StepAskBusinessType,
	})
	c.registerAskConfirm(askConfirmSpec{
		field:    FieldBusinessType,
		ask:      models.StepAskBusinessType,
		collect:  models.StepCollectBusiness,
		confirm:  models.StepConfirmBusiness,
		question: "What kind of business do you have?",
		next:     models.StepAskServiceType,
	})
	c.registerAskConfirm(askConfirmSpec{
		field:    FieldServiceType,
		ask:      models.StepAskServiceType,
		collect:  models.StepCollectService,
		confirm:  models.StepConfirmService,
		question: "What service are you interested in? For example branding, web design, or marketing.",
		next:     models.StepOfferDate,
	})

	c.register(models.StepOfferDate, c.handleOfferDate)
	c.register(models.StepCollectDate, c.handleCollectDate)
	c.register(models.StepAskTime, c.handleAskTime)
	c.register(models.StepCollectTime, c.handleCollectTime)
	c.register(models.StepSaveAppointment, c.handleSaveAppointment)
}

func (c *Controller) handleOfferDate(ctx context.Context, sess Context, in Input) Outcome {
	offered := c.hours.NextOpenDate(c.now()).Format("Monday, January 2, 2006")
	say := fmt.Sprintf("The earliest available date is %s. Press 1 or say yes to take it, or tell me another date.", offered)
	return Prompt(say, models.StepCollectDate).WithPatch(FieldOfferedDate, offered)
}

func (c *Controller) handleCollectDate(ctx context.Context, sess Context, in Input) Outcome {
	if in.Empty() {
		return Redirect(models.StepOfferDate)
	}
	if isYes(in) {
		offered := sess.Get(FieldOfferedDate)
		if offered == "" {
			return Redirect(models.StepOfferDate)
		}
		return Redirect(models.StepAskTime).WithPatch(FieldDate, offered)
	}
	// The caller named their own date; it is stored as spoken, not validated.
	return Redirect(models.StepAskTime).WithPatch(FieldDate, in.Value())
}

func (c *Controller) handleAskTime(ctx context.Context, sess Context, in Input) Outcome {
	return Prompt(fmt.Sprintf("What time works best for you on %s?", sess.Get(FieldDate)), models.StepCollectTime)
}

func (c *Controller) handleCollectTime(ctx context.Context, sess Context, in Input) Outcome {
	value := in.Value()
	if value == "" {
		return Prompt("I didn't catch that. What time works best for you?", models.StepCollectTime)
	}
	return Redirect(models.StepSaveAppointment).WithPatch(FieldTime, value)
}

func (c *Controller) handleSaveAppointment(ctx context.Context, sess Context, in Input) Outcome {
	existing, err := c.store.FindAppointment(sess.Phone)
	if err != nil {
		return Terminate(msgApology)
	}
	if existing != nil {
		say := fmt.Sprintf("It looks like you already have an appointment for %s at %s. Returning to the main menu.",
			existing.Date, existing.Time)
		return RedirectWithMessage(say, models.StepMainMenu)
	}

	appt := models.Appointment{
		Phone:        sess.Phone,
		Name:         sess.Get(FieldName),
		BusinessType: sess.Get(FieldBusinessType),
		ServiceType:  sess.Get(FieldServiceType),
		Date:         sess.Get(FieldDate),
		Time:         sess.Get(FieldTime),
		CreatedAt:    c.now().UTC(),
	}
	if err := c.store.SaveAppointment(appt); err != nil {
		if errors.Is(err, models.ErrEmptyName) || errors.Is(err, models.ErrEmptyDate) || errors.Is(err, models.ErrEmptyTime) {
			return RedirectWithMessage("I'm missing some of your details. Let's go through them again.", models.StepAskName)
		}
		return Terminate(msgApology)
	}

	c.logCall(sess.Phone, models.ActionAppointmentBooked, map[string]string{
		"name":    appt.Name,
		"date":    appt.Date,
		"time":    appt.Time,
		"service": appt.ServiceType,
	})
	c.notifier.NotifyAdmins(ctx, fmt.Sprintf("New appointment: %s on %s at %s. Business: %s. Service: %s. Phone: %s.",
		appt.Name, appt.Date, appt.Time, appt.BusinessType, appt.ServiceType, appt.Phone))
	if c.confirmBySMS {
		c.notifier.SendCustomer(ctx, sess.Phone, fmt.Sprintf("Your appointment with %s is confirmed for %s at %s.",
			c.businessName, appt.Date, appt.Time))
	}

	say := fmt.Sprintf("Perfect, %s. Your appointment is booked for %s at %s. "+
		"We'll call you with a reminder one day before. Thank you for choosing %s. Goodbye.",
		appt.Name, appt.Date, appt.Time, c.businessName)
	return Terminate(say)
}
