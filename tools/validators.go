package tools

import "regexp"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// CIF/NIF espanhol: letra + 7 dígitos + dígito/letra de controle, ou 8 dígitos + letra.
var taxIDRegex = regexp.MustCompile(`^([ABCDEFGHJKLMNPQRSUVW][0-9]{7}[0-9A-J]|[0-9]{8}[A-Z]|[XYZ][0-9]{7}[A-Z])$`)

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateTaxID aceita vazio (campo opcional) ou um CIF/NIF/NIE com formato válido.
func ValidateTaxID(id string) bool {
	if id == "" {
		return true
	}
	return taxIDRegex.MatchString(id)
}

func CheckPassword(password string) string {
	if len(password) < 8 {
		return "password"
	}
	return ""
}
