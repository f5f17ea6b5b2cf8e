package views

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// whatsAppCountryCode is prefixed to every phone number; the clinic only
// serves Brazilian numbers.
const whatsAppCountryCode = "55"

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func whatsAppLink(phone, message string) string {
	clean := digits(phone)
	if clean == "" {
		return ""
	}
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s%s?text=%s", whatsAppCountryCode, clean, text)
}

// WelcomeLink builds the wa.me link an administrator uses to send a new
// veterinarian their temporary password. It is empty when phone has no
// digits.
func WelcomeLink(phone, name, tempPassword, portalURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá, Dr. %s! Seja bem-vindo ao BillyBuddy.\n\n", name)
	b.WriteString("Seu acesso ao painel veterinário já está liberado!\n\n")
	fmt.Fprintf(&b, "Senha Provisória: %s\n\n", tempPassword)
	if portalURL != "" {
		fmt.Fprintf(&b, "Link de acesso: %s\n\n", portalURL)
	}
	b.WriteString("Por favor, altere sua senha após o primeiro acesso.")
	return whatsAppLink(phone, b.String())
}

// ContactLink is the link a tutor uses to ask a veterinarian for an
// appointment.
func ContactLink(phone, name string) string {
	return whatsAppLink(phone, fmt.Sprintf("Olá, Dr. %s! Gostaria de agendar uma consulta.", name))
}
