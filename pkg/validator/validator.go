package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/vedran77/pokehire/internal/domain"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

const (
	minPasswordLen = 8
	maxNameLen     = 100
	maxTitleLen    = 200
	maxTeams       = 50
)

func ValidateSignup(email, password, fullName, profileType string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if len(password) < minPasswordLen {
		errs.Add("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		errs.Add("fullName", "Full name is required")
	} else if len(fullName) > maxNameLen {
		errs.Add("fullName", "Full name is too long")
	}

	if profileType == "" {
		errs.Add("profileType", "Profile type is required")
	} else if !domain.ProfileType(profileType).Valid() {
		errs.Add("profileType", "Profile type must be client or contractor")
	}

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateContract(contractorID, title string, amount int64) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(contractorID) == "" {
		errs.Add("contractorId", "Contractor is required")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if len(title) > maxTitleLen {
		errs.Add("title", "Title is too long")
	}

	if amount <= 0 {
		errs.Add("amount", "Amount must be greater than zero")
	}

	return errs
}

// ValidateTeams checks the shape of a full team list before it replaces the
// stored one. Field keys are indexed, e.g. "teams[1].pokemons[0].image".
func ValidateTeams(teams []domain.Team) ValidationErrors {
	errs := make(ValidationErrors)

	if len(teams) > maxTeams {
		errs.Add("teams", fmt.Sprintf("At most %d teams can be saved", maxTeams))
		return errs
	}

	for i, team := range teams {
		prefix := fmt.Sprintf("teams[%d]", i)

		name := strings.TrimSpace(team.Name)
		if name == "" {
			errs.Add(prefix+".name", "Team name is required")
		} else if len(name) > maxNameLen {
			errs.Add(prefix+".name", "Team name is too long")
		}

		if len(team.Pokemons) > domain.MaxTeamSize {
			errs.Add(prefix+".pokemons", fmt.Sprintf("A team can have at most %d pokemons", domain.MaxTeamSize))
			continue
		}

		for j, p := range team.Pokemons {
			validatePokemon(fmt.Sprintf("%s.pokemons[%d]", prefix, j), p, errs)
		}
	}

	return errs
}

func validatePokemon(prefix string, p domain.Pokemon, errs ValidationErrors) {
	if strings.TrimSpace(p.Name) == "" {
		errs.Add(prefix+".name", "Pokemon name is required")
	}

	if p.Image != "" {
		u, err := url.Parse(p.Image)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs.Add(prefix+".image", "Image must be an http(s) URL")
		}
	}

	for k, t := range p.Types {
		if strings.TrimSpace(t) == "" {
			errs.Add(fmt.Sprintf("%s.types[%d]", prefix, k), "Type must not be empty")
		}
	}

	if p.BaseExperience < 0 {
		errs.Add(prefix+".base_experience", "Base experience must not be negative")
	}
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}
