package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vedran77/pokehire/internal/domain"
)

func TestValidateSignup(t *testing.T) {
	assert.False(t, ValidateSignup("ash@example.com", "pikachu123", "Ash Ketchum", "client").HasErrors())

	errs := ValidateSignup("not-an-email", "short", " ", "admin")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "fullName")
	assert.Contains(t, errs, "profileType")

	errs = ValidateSignup("", "pikachu123", "Ash", "")
	assert.Equal(t, "Email is required", errs["email"])
	assert.Equal(t, "Profile type is required", errs["profileType"])
}

func TestValidateLogin(t *testing.T) {
	assert.False(t, ValidateLogin("ash@example.com", "x").HasErrors())

	errs := ValidateLogin("", "")
	assert.Len(t, errs, 2)
}

func TestValidateContract(t *testing.T) {
	assert.False(t, ValidateContract("c0ffee", "Catch a Snorlax", 40).HasErrors())

	errs := ValidateContract("", "", 0)
	assert.Contains(t, errs, "contractorId")
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "amount")

	errs = ValidateContract("c0ffee", strings.Repeat("x", 201), -5)
	assert.Equal(t, "Title is too long", errs["title"])
	assert.Contains(t, errs, "amount")
}

func TestValidateTeams(t *testing.T) {
	valid := []domain.Team{{
		Name: "Kanto",
		Pokemons: []domain.Pokemon{{
			Name:           "pikachu",
			Image:          "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/25.png",
			Types:          []string{"electric"},
			BaseExperience: 112,
		}},
	}}
	assert.False(t, ValidateTeams(valid).HasErrors())
	assert.False(t, ValidateTeams(nil).HasErrors())

	full := make([]domain.Pokemon, domain.MaxTeamSize+1)
	for i := range full {
		full[i] = domain.Pokemon{Name: "p"}
	}
	errs := ValidateTeams([]domain.Team{{Name: "Too many", Pokemons: full}})
	assert.Contains(t, errs, "teams[0].pokemons")

	errs = ValidateTeams([]domain.Team{
		{Name: "ok"},
		{Name: "", Pokemons: []domain.Pokemon{{Name: "", Image: "javascript:alert(1)", Types: []string{""}, BaseExperience: -1}}},
	})
	assert.Contains(t, errs, "teams[1].name")
	assert.Contains(t, errs, "teams[1].pokemons[0].name")
	assert.Contains(t, errs, "teams[1].pokemons[0].image")
	assert.Contains(t, errs, "teams[1].pokemons[0].types[0]")
	assert.Contains(t, errs, "teams[1].pokemons[0].base_experience")
	assert.NotContains(t, errs, "teams[0].name")
}

func TestValidationErrors_Error(t *testing.T) {
	errs := make(ValidationErrors)
	errs.Add("title", "Title is required")
	assert.Equal(t, "validation failed: title: Title is required", errs.Error())
}
