package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/skiquiz/internal/badges"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct rules and the cross-field constraints, reporting
// every failure at once.
func (c Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	perQuestion, err := time.ParseDuration(c.Game.TimePerQuestion)
	if err != nil || perQuestion <= 0 {
		problems = append(problems, fmt.Sprintf("game.time_per_question: %q is not a positive duration", c.Game.TimePerQuestion))
	}
	tick, err := time.ParseDuration(c.Game.TickInterval)
	if err != nil || tick <= 0 {
		problems = append(problems, fmt.Sprintf("game.tick_interval: %q is not a positive duration", c.Game.TickInterval))
	} else if perQuestion > 0 && tick > perQuestion {
		problems = append(problems, "game.tick_interval: longer than time_per_question")
	}

	for _, id := range c.Profile.Badges {
		if !badges.Known(badges.ID(id)) {
			problems = append(problems, fmt.Sprintf("profile.badges: unknown badge %q", id))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidConfig, strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidatePool refuses a game size larger than the loaded question pool.
func (c Config) ValidatePool(poolSize int) error {
	if c.Game.QuestionsPerGame > poolSize {
		return fmt.Errorf("%w: game.questions_per_game is %d but the question pool has %d",
			ErrInvalidConfig, c.Game.QuestionsPerGame, poolSize)
	}
	return nil
}
