package handlers

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the domain enum tags used in DTO binding rules.
// A failed registration panics at route setup rather than on the first bind.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic(fmt.Sprintf("unexpected binding validator engine %T", binding.Validator.Engine()))
		}
		for tag, fn := range domainValidators {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("register %q validator: %v", tag, err))
			}
		}
	})
}

var domainValidators = map[string]validator.Func{
	"entity_type":       parsedBy(domain.ParseEntityType),
	"closure_mode":      parsedBy(domain.ParseClosureMode),
	"project_role":      parsedBy(domain.ParseProjectRole),
	"permission_action": parsedBy(domain.ParsePermissionAction),
}

func parsedBy[T any](parse func(string) (T, error)) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := parse(fl.Field().String())
		return err == nil
	}
}
