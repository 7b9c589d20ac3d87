package utils

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/openaudit/openaudit/internal/errors"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
	aliasRe    = regexp.MustCompile(`^[a-z0-9-.]+$`)
	repeatRe   = regexp.MustCompile(`[.-]{2}`)
)

func badRequest(message string) error {
	return &errors.ErrorWithStatusCode{Message: message, StatusCode: 400}
}

type UsernameValidator struct{}

func (v *UsernameValidator) Username(name string) error {
	if name == "" {
		return badRequest("Missing username.")
	}
	if utf8.RuneCountInString(name) > 39 {
		return badRequest("Username must be shorter than 40 characters.")
	}
	if !usernameRe.MatchString(name) {
		return badRequest("Username can only have numbers, letters, dashes, and underlines.")
	}
	return nil
}

type PasswordValidator struct{}

func (v *PasswordValidator) Password(password string) error {
	if password == "" {
		return badRequest("Missing password.")
	}
	if len(password) < 8 {
		return badRequest("Password must be at least 8 characters long.")
	}
	if len(password) > 256 {
		return badRequest("Password must be shorter than 257 characters.")
	}
	return nil
}

type AliasValidator struct{}

func (v *AliasValidator) Alias(alias string) error {
	if utf8.RuneCountInString(alias) < 3 || utf8.RuneCountInString(alias) > 99 {
		return badRequest("Alias must be between 3 and 99 characters long.")
	}
	if !aliasRe.MatchString(alias) {
		return badRequest("Alias can only have alphanumeric, dash, and dot characters.")
	}
	if repeatRe.MatchString(alias) {
		return badRequest("Alias can't have consecutive dots or dashes.")
	}
	if strings.HasPrefix(alias, ".") || strings.HasPrefix(alias, "-") ||
		strings.HasSuffix(alias, ".") || strings.HasSuffix(alias, "-") {
		return badRequest("Alias can't start or end with dot or dash.")
	}
	return nil
}

type ProfileValidator struct{}

func (v *ProfileValidator) Profile(realName, linkedin, github, qualifications string) error {
	if utf8.RuneCountInString(realName) > 69 {
		return badRequest("Real name must be shorter than 70 characters.")
	}
	if linkedin != "" {
		if utf8.RuneCountInString(linkedin) > 299 {
			return badRequest("LinkedIn URL must be shorter than 300 characters.")
		}
		if u, err := url.Parse(linkedin); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return badRequest("Invalid LinkedIn URL.")
		}
	}
	if github != "" {
		if utf8.RuneCountInString(github) > 39 {
			return badRequest("GitHub Handle must be shorter than 40 characters.")
		}
		if !usernameRe.MatchString(github) {
			return badRequest("GitHub Handle can only have numbers, letters, dashes, and underlines.")
		}
	}
	if utf8.RuneCountInString(qualifications) > 4095 {
		return badRequest("Qualifications must be shorter than 4096 characters.")
	}
	return nil
}
