package mail

import "fmt"

func otpMessage(name, code string) message {
	return message{
		subject: "Your FixACareer login code",
		body: fmt.Sprintf(`Hi %s,

Your one-time login code is:

    %s

The code expires shortly. If you did not try to sign in, ignore this email
and consider changing your password.

FixACareer Team
`, name, code),
	}
}

func temporaryPasswordMessage(name, password, appURL string) message {
	body := fmt.Sprintf(`Hi %s,

A temporary password has been issued for your FixACareer account:

    %s

Sign in with it and change your password right away.
`, name, password)
	if appURL != "" {
		body += fmt.Sprintf("\nSign in at %s\n", appURL)
	}
	body += "\nFixACareer Team\n"
	return message{subject: "Your temporary FixACareer password", body: body}
}

func welcomeMessage(name, appURL string) message {
	body := fmt.Sprintf(`Hi %s,

Welcome to FixACareer! Your account is ready.
`, name)
	if appURL != "" {
		body += fmt.Sprintf("\nGet started at %s\n", appURL)
	}
	body += "\nFixACareer Team\n"
	return message{subject: "Welcome to FixACareer", body: body}
}
