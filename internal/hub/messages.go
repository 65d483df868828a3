package hub

import (
	"fmt"

	"rendezvous/pkg/types"
)

const (
	msgStartMatch       = "You are connected! Get ready for the countdown."
	msgStartingNow      = "Conversation starting now!"
	msgCallEnded        = "Call has ended."
	msgRatingUpdated    = "Your average rating has been updated."
	msgAskToRejoin      = "Do you want to join the queue again?"
	msgNoPeerToRate     = "No peer to rate."
	msgPeerDisconnected = "Your peer has disconnected."
	msgNameInUse        = "Name is already in use."
)

var msgInvalidName = fmt.Sprintf("Please enter a name between 1 and %d characters.", types.MaxNameLength)

func welcomeText(name string) string {
	return fmt.Sprintf("Welcome, %s!", name)
}

func queueText(action string, position int) string {
	if action == types.ActionRejoinQueue {
		return fmt.Sprintf("You are back in the queue! Your position is %d", position)
	}
	return fmt.Sprintf("You are in the queue! Your position is %d", position)
}

func matchedText(self, peer string) string {
	return fmt.Sprintf("Hi %s, you are now matched with %s", self, peer)
}

func countdownText(i int) string {
	return fmt.Sprintf("Starting in %d...", i)
}

func timerText(remaining string) string {
	return "Time left: " + remaining
}

func surveyText(peer string) string {
	return fmt.Sprintf("Please rate your match, %s, from 1 to 5.", peer)
}

func ratedText(peer string) string {
	return fmt.Sprintf("You rated %s.", peer)
}
