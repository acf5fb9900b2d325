package callflow

import "fmt"

// Spoken prompt catalog. Every user-facing utterance lives here so the copy
// can be reviewed in one place. Graduated re-prompts are indexed by attempt
// level: the second entry is deliberately simpler than the first.

const (
	promptAskID = "please tell me your national ID number, including the verification digit"

	promptEscalation = "I'm sorry, I'm not able to continue with the booking right now. Please stay on the line and one of our staff will help you."
)

var (
	idReprompts = []string{
		"I didn't catch that. Could you tell me your ID number, digit by digit, including the verification digit?",
		"Let's try once more. Please say only the digits of your ID number, one at a time.",
	}

	idFormatReprompts = []string{
		"I'm sorry, I couldn't make out your ID number. Could you repeat it, digit by digit?",
		"One more time, please. Say just the digits of your ID, slowly.",
	}

	confirmIDReprompts = []string{
		"Sorry, I need a yes or a no. Is the ID number I read back correct?",
		"If that ID is correct, please just say yes. If not, say no.",
	}

	specialtyReprompts = []string{
		"I didn't recognize that specialty. We have dermatology, cardiology, pediatrics, traumatology, ophthalmology, and general medicine. Which would you like?",
		"Please say just the name of the specialty, for example dermatology or cardiology.",
	}

	dateReprompts = []string{
		"I didn't catch the day. You can say a weekday, or today, or tomorrow. What day works for you?",
	}

	alternativeReprompts = []string{
		"Sorry, I need a yes or a no. Would that time work for you?",
	}

	confirmApptReprompts = []string{
		"Sorry, I need a yes or a no. Should I book that appointment for you?",
		"If you'd like me to book it, just say yes. Otherwise say no.",
	}
)

func promptGreeting(clinicName string) string {
	if clinicName == "" {
		clinicName = "our clinic"
	}
	return fmt.Sprintf("Hello! You've reached the automated appointment line of %s. To get started, %s.", clinicName, promptAskID)
}

func promptIDInvalid() string {
	return "That ID number doesn't seem to be valid. " + idReprompts[1]
}

func promptConfirmID(masked string) string {
	return fmt.Sprintf("To confirm, your ID ends in %s. Is that correct?", masked)
}

func promptRetryID() string {
	return "No problem, let's start over. Please tell me your ID number, digit by digit."
}

func promptAskSpecialty(patientName string) string {
	if patientName == "" {
		return "Thank you. What specialty would you like an appointment for?"
	}
	return fmt.Sprintf("Thank you, %s. What specialty would you like an appointment for?", patientName)
}

func promptAskDate(specialty string) string {
	return fmt.Sprintf("Alright, %s. What day would you like to come in? You can also say, the earliest available.", specialty)
}

func promptOfferSlot(slot *Slot) string {
	return fmt.Sprintf("I have an opening with %s on %s. Should I book it for you?",
		slot.Professional, spokenDate(slot.StartsAt))
}

func promptOfferAlternative(slot *Slot) string {
	return fmt.Sprintf("I don't have anything available on that day. The closest opening is with %s on %s. Would that work for you?",
		slot.Professional, spokenDate(slot.StartsAt))
}

func promptBooked(slot *Slot) string {
	return fmt.Sprintf("Perfect, you're booked with %s on %s.",
		slot.Professional, spokenDate(slot.StartsAt))
}

func promptDeclined() string {
	return "No problem, I won't book anything. Feel free to call us again whenever you like."
}

func promptPatientNotFound() string {
	return "I'm sorry, I couldn't find your patient record with that ID. Please stay on the line and one of our staff will help you."
}

func promptNoAvailability(specialty string) string {
	return fmt.Sprintf("I'm sorry, there are no %s appointments available at the moment. Please stay on the line and one of our staff will help you.", specialty)
}

func promptGoodbye() string {
	return "Thank you for calling. Goodbye!"
}

func promptSilenceGoodbye() string {
	return "I haven't been able to hear you, so I'll end the call now. Please call us again. Goodbye!"
}
