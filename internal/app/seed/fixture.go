// Package seed loads the demo fixture into an empty database.
package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/dalemusser/bloodlink/internal/domain/models"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultFixture []byte

// Account is a fixed user from the fixture.
type Account struct {
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Avatar     string `yaml:"avatar"`
	BloodGroup string `yaml:"bloodGroup"`
	District   string `yaml:"district"`
	Upazila    string `yaml:"upazila"`
	Role       string `yaml:"role"`
}

type Location struct {
	District string `yaml:"district"`
	Upazila  string `yaml:"upazila"`
}

// DonorTemplate generates numbered donors. Each pattern takes the donor's
// 1-based number through a single %d.
type DonorTemplate struct {
	Count    int    `yaml:"count"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Avatar   string `yaml:"avatar"`
}

// RequestTemplate generates donation requests round-robin over the
// fixture's palettes.
type RequestTemplate struct {
	Count     int      `yaml:"count"`
	Statuses  []string `yaml:"statuses"`
	Hospitals []string `yaml:"hospitals"`
	Message   string   `yaml:"message"`
}

type Fixture struct {
	Accounts    []Account       `yaml:"accounts"`
	BloodGroups []string        `yaml:"bloodGroups"`
	Locations   []Location      `yaml:"locations"`
	Donors      DonorTemplate   `yaml:"donors"`
	Requests    RequestTemplate `yaml:"requests"`
}

// Default returns the embedded fixture.
func Default() (Fixture, error) {
	return Parse(defaultFixture)
}

// Parse decodes and checks a fixture.
func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("seed: decode fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return Fixture{}, fmt.Errorf("seed: %w", err)
	}
	return f, nil
}

func (f Fixture) validate() error {
	for _, a := range f.Accounts {
		if a.Email == "" || a.Password == "" {
			return fmt.Errorf("account %q needs an email and a password", a.Name)
		}
		if !models.IsValidRole(a.Role) {
			return fmt.Errorf("account %s has unknown role %q", a.Email, a.Role)
		}
	}
	for _, g := range f.BloodGroups {
		if _, ok := models.NormalizeBloodGroup(g); !ok {
			return fmt.Errorf("unknown blood group %q", g)
		}
	}
	for _, s := range f.Requests.Statuses {
		if !models.RequestStatus(s).Valid() {
			return fmt.Errorf("unknown request status %q", s)
		}
	}
	if f.Donors.Count > 0 {
		if len(f.BloodGroups) == 0 || len(f.Locations) == 0 {
			return fmt.Errorf("donors need bloodGroups and locations")
		}
		for _, p := range []string{f.Donors.Name, f.Donors.Email, f.Donors.Password} {
			if strings.Count(p, "%d") != 1 {
				return fmt.Errorf("donor pattern %q must contain exactly one %%d", p)
			}
		}
		if f.Donors.Avatar != "" && strings.Count(f.Donors.Avatar, "%d") != 1 {
			return fmt.Errorf("donor pattern %q must contain exactly one %%d", f.Donors.Avatar)
		}
	}
	if f.Requests.Count > 0 {
		if f.Donors.Count < 2 {
			return fmt.Errorf("requests need at least two donors")
		}
		if len(f.Requests.Statuses) == 0 || len(f.Requests.Hospitals) == 0 {
			return fmt.Errorf("requests need statuses and hospitals")
		}
		if strings.Count(f.Requests.Message, "%d") != 1 {
			return fmt.Errorf("request message %q must contain exactly one %%d", f.Requests.Message)
		}
	}
	return nil
}
