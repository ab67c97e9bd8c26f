package service

import "fmt"

func reportEmailTemplate(address, report, link, appName string) (string, string) {
	subject := fmt.Sprintf("Project Report - %s", address)
	body := fmt.Sprintf(`Here is the latest report for %s.

View it online (link expires): %s

%s
Sent from %s`, address, link, report, appName)

	return subject, body
}
