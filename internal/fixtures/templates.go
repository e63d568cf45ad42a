package fixtures

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/roach88/herocheck/internal/hero"
)

// ValidHeroes returns n valid heroes with varied attributes: alternating
// gender, every fifth one deceased, every third one with brownie points.
func (g *Generator) ValidHeroes(n int) []hero.HeroPayload {
	heroes := make([]hero.HeroPayload, 0, n)
	for i := 0; i < n; i++ {
		p := hero.HeroPayload{
			NatID:     g.RandomNatID(),
			Name:      fmt.Sprintf("Test Hero %d", i+1),
			Gender:    hero.GenderMale,
			BirthDate: g.PastDate(50),
			Salary:    float64(3000 + i*500),
			TaxPaid:   float64(300 + i*50),
		}
		if i%2 == 1 {
			p.Gender = hero.GenderFemale
		}
		if i%5 == 0 {
			d := g.PastDate(1)
			p.DeathDate = &d
		}
		if i%3 == 0 {
			p.BrowniePoints = ldvalue.NewOptionalInt(i * 5)
		}
		heroes = append(heroes, p)
	}
	return heroes
}

// HeroesWithOneInvalid returns four valid heroes followed by one with a
// negative salary.
func (g *Generator) HeroesWithOneInvalid() []hero.HeroPayload {
	heroes := g.ValidHeroes(4)
	return append(heroes, hero.HeroPayload{
		NatID:         g.RandomNatID(),
		Name:          "Invalid Hero",
		Gender:        hero.GenderMale,
		BirthDate:     g.PastDate(50),
		Salary:        -1000,
		TaxPaid:       500,
		BrowniePoints: ldvalue.NewOptionalInt(10),
	})
}

// InvalidHeroes returns one hero per hero rule, each breaking only that rule.
func (g *Generator) InvalidHeroes() []hero.HeroPayload {
	base := func(natid, name string, gender hero.Gender) hero.HeroPayload {
		return hero.HeroPayload{
			NatID:         natid,
			Name:          name,
			Gender:        gender,
			BirthDate:     "1990-01-01T00:00:00",
			Salary:        5000,
			TaxPaid:       500,
			BrowniePoints: ldvalue.NewOptionalInt(10),
		}
	}

	natid := base("invalid-format", "Invalid NatID Hero", hero.GenderMale)
	name := base(g.RandomNatID(), "", hero.GenderFemale)
	gender := base(g.RandomNatID(), "Invalid Gender Hero", "OTHER")
	future := base(g.RandomNatID(), "Future Birth Hero", hero.GenderMale)
	future.BirthDate = "2050-01-01T00:00:00"
	salary := base(g.RandomNatID(), "Negative Salary Hero", hero.GenderFemale)
	salary.Salary = -5000
	tax := base(g.RandomNatID(), "Negative Tax Hero", hero.GenderMale)
	tax.TaxPaid = -500

	return []hero.HeroPayload{natid, name, gender, future, salary, tax}
}
