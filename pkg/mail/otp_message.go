package mail

import "fmt"

// OTPMessage builds the verification-code email for the given recipient.
func OTPMessage(to, code string, expiryMinutes int) Message {
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"Your Taskbox verification code is: %s\n\n"+
			"This code expires in %d minutes, can be used only once, and should\n"+
			"not be shared with anyone.\n\n"+
			"Taskbox Team\n",
		code, expiryMinutes,
	)

	return Message{
		To:      []string{to},
		Subject: "Your Taskbox verification code",
		Body:    body,
	}
}
