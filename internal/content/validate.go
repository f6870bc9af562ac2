package content

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/skiquiz/internal/badges"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct rules and cross-item consistency. All problems are
// reported in one error wrapping ErrInvalidPack.
func (p *Pack) Validate() error {
	var problems []string

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidPack, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	problems = append(problems, p.checkQuestions()...)
	problems = append(problems, p.checkCatalog()...)

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidPack, strings.Join(problems, "\n- "))
	}
	return nil
}

func (p *Pack) checkQuestions() []string {
	var problems []string
	seen := make(map[string]bool)
	for i, q := range p.Questions {
		if seen[q.ID] {
			problems = append(problems, fmt.Sprintf("questions[%d]: duplicate id %q", i, q.ID))
		}
		seen[q.ID] = true

		opts := make(map[string]bool)
		hasAnswer := false
		for _, o := range q.Options {
			if opts[o] {
				problems = append(problems, fmt.Sprintf("questions[%d]: duplicate option %q", i, o))
			}
			opts[o] = true
			if o == TimeoutAnswer {
				problems = append(problems, fmt.Sprintf("questions[%d]: option uses reserved value %q", i, TimeoutAnswer))
			}
			if o == q.Answer {
				hasAnswer = true
			}
		}
		if !hasAnswer {
			problems = append(problems, fmt.Sprintf("questions[%d]: answer %q is not one of the options", i, q.Answer))
		}
	}
	return problems
}

func (p *Pack) checkCatalog() []string {
	var problems []string

	items := make(map[string]bool)
	for i, it := range p.ShopItems {
		if items[it.ID] {
			problems = append(problems, fmt.Sprintf("shop_items[%d]: duplicate id %q", i, it.ID))
		}
		items[it.ID] = true
	}

	for i, b := range p.Badges {
		if !badges.Known(b.ID) {
			problems = append(problems, fmt.Sprintf("badges[%d]: no unlock rule for %q", i, b.ID))
		}
	}

	for i := 1; i < len(p.Leaderboard); i++ {
		if p.Leaderboard[i].Rank <= p.Leaderboard[i-1].Rank {
			problems = append(problems, fmt.Sprintf("leaderboard[%d]: ranks must ascend", i))
		}
	}

	for i := 1; i < len(p.Prizes.Tiers); i++ {
		if p.Prizes.Tiers[i].MinPlayers <= p.Prizes.Tiers[i-1].MinPlayers {
			problems = append(problems, fmt.Sprintf("prizes.tiers[%d]: min_players must ascend", i))
		}
	}
	return problems
}
