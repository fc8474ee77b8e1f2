package application

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"izakaya/answer/domain"
)

const DefaultMaxQuestionChars = 500

// DefaultDenylist são termos de prompt injection / abuso, comparados sem
// diferenciar maiúsculas, como substring.
var DefaultDenylist = []string{
	"hack", "exploit", "bypass", "jailbreak", "ignore instructions",
	"system prompt", "override", "admin", "root", "password",
}

type Validator struct {
	MaxChars int
	Denylist []string
}

func DefaultValidator() Validator {
	return Validator{MaxChars: DefaultMaxQuestionChars, Denylist: DefaultDenylist}
}

// Validate retorna *domain.ValidationError com a mensagem mostrada ao usuário.
// O tamanho é contado em caracteres (runes), não em bytes.
func (v Validator) Validate(question string) error {
	if question == "" {
		return &domain.ValidationError{Reason: "Question is required"}
	}

	max := v.MaxChars
	if max <= 0 {
		max = DefaultMaxQuestionChars
	}
	if utf8.RuneCountInString(question) > max {
		return &domain.ValidationError{Reason: fmt.Sprintf("Question too long (max %d characters)", max)}
	}

	lower := strings.ToLower(question)
	for _, term := range v.Denylist {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return &domain.ValidationError{Reason: "Question contains inappropriate content"}
		}
	}
	return nil
}
