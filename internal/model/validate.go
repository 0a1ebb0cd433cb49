package model

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		log.Printf("⚠️  Validator engine is %T, competition rule not registered", binding.Validator.Engine())
		return
	}
	if err := v.RegisterValidation("competition", validCompetition); err != nil {
		log.Printf("⚠️  Failed to register competition rule: %v", err)
	}
}

// validCompetition accepts the competition levels in any case
func validCompetition(fl validator.FieldLevel) bool {
	switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
	case "", CompetitionLow, CompetitionMedium, CompetitionHigh:
		return true
	}
	return false
}
