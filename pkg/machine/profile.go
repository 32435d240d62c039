package machine

import (
	"fmt"
	"strings"

	"machine-control-go/pkg/axis"
	"machine-control-go/pkg/config"
	"machine-control-go/pkg/errors"
)

// Profile sections: one "[axis <letter>]" per axis with options
// steps-mm, max-feedrate, accel, range and home, plus an optional
// "[machine]" section with axis-mapping. Ingress selection and the
// channel layout are deliberately not profile-settable.

var homeChoices = []string{"none", "origin", "end-of-range"}

// ApplyProfile loads a hardware profile file and applies it on top of
// the current configuration values. Unknown sections and options are
// errors; a profile drives physical hardware, so typos must not pass
// silently.
func ApplyProfile(cfg *Config, path string) error {
	prof, err := config.Load(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrProfileParse, fmt.Sprintf("cannot load profile '%s'", path)).
			SetPath(path)
	}
	return applyProfile(cfg, prof)
}

// ApplyProfileString is ApplyProfile for an in-memory profile.
func ApplyProfileString(cfg *Config, data string) error {
	prof, err := config.LoadString(data)
	if err != nil {
		return errors.Wrap(err, errors.ErrProfileParse, "cannot parse profile")
	}
	return applyProfile(cfg, prof)
}

func applyProfile(cfg *Config, prof *config.Config) error {
	if sec := prof.GetSectionOptional("machine"); sec != nil {
		if sec.HasOption("axis-mapping") {
			mapping, _ := sec.Get("axis-mapping")
			if err := ValidateAxisMapping(mapping); err != nil {
				return errors.ProfileValidationError("machine", "axis-mapping", err.Error())
			}
			cfg.AxisMapping = mapping
		}
	}

	for _, sec := range prof.GetPrefixSections("axis ") {
		name := sec.GetName()
		letter := strings.TrimSpace(strings.TrimPrefix(name, "axis "))
		if len(letter) != 1 {
			return errors.ProfileSectionError(name)
		}
		ax, ok := axis.FromLetter(letter[0])
		if !ok {
			return errors.ProfileValidationError(name, "",
				fmt.Sprintf("'%s' is not an axis letter (valid: %s)", letter, axis.Letters))
		}

		numeric := []struct {
			option string
			target *[axis.NumAxes]float64
		}{
			{"steps-mm", &cfg.StepsPerMM},
			{"max-feedrate", &cfg.MaxFeedrate},
			{"accel", &cfg.Acceleration},
			{"range", &cfg.MoveRangeMM},
		}
		for _, n := range numeric {
			if !sec.HasOption(n.option) {
				continue
			}
			v, err := sec.GetFloat(n.option)
			if err != nil {
				return profileValueError(name, n.option, err)
			}
			n.target[ax] = v
		}

		if sec.HasOption("home") {
			choice, err := sec.GetChoice("home", homeChoices)
			if err != nil {
				return profileValueError(name, "home", err)
			}
			h, _ := axis.HomeFromName(choice)
			cfg.HomeSwitch[ax] = h
		}
	}

	if err := prof.CheckUnusedSections(); err != nil {
		return errors.Wrap(err, errors.ErrProfileParse, "profile has unknown sections")
	}
	if err := prof.CheckUnusedOptions(); err != nil {
		return errors.Wrap(err, errors.ErrProfileOption, "profile has unknown options")
	}
	return nil
}

func profileValueError(section, option string, err error) *errors.ControlError {
	return errors.Wrap(err, errors.ErrProfileValidation, fmt.Sprintf("option '%s' in section '%s'", option, section)).
		SetSection(section).
		SetOption(option)
}
