package ui

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/manifoldco/promptui"

	"github.com/brogergvhs/crunchymanga/internal/config"
)

var ErrUserAbort = errors.New("user abort! Maybe next time")

var reSeriesURL = regexp.MustCompile(`(?i)^https://(www\.)?crunchyroll\.com/comics/manga/(.*)/volumes$`)

// Answers holds one run's inputs. Empty fields are asked for interactively.
type Answers struct {
	Username string
	Password string
	URL      string
	Browser  string
	Format   string
	PageSize string
	Divide   string
	Yes      bool
}

// Choices lists the selectable values of each question.
type Choices struct {
	Browsers  []string
	Formats   []string
	PageSizes []string
	Divides   []string

	// NeedsPageSize reports whether a format produces PDF output.
	NeedsPageSize func(format string) bool
}

func ValidateUsername(v string) error {
	if len(v) > 3 {
		return nil
	}
	return errors.New("this doesn't seem to be a valid username")
}

func ValidatePassword(v string) error {
	if len(v) > 3 {
		return nil
	}
	return errors.New("this doesn't seem to be a valid password")
}

func ValidateURL(v string) error {
	if reSeriesURL.MatchString(v) {
		return nil
	}
	return errors.New("invalid URL. The correct format is: https://crunchyroll.com/comics/manga/MANGA_TITLE/volumes")
}

// Ask fills every missing answer, using remembered preferences as defaults.
func Ask(prefs config.Preferences, ch Choices, a Answers) (Answers, error) {
	var err error

	if a.Username == "" {
		a.Username, err = askText("Enter your Crunchyroll username", config.Default(prefs, config.PrefUsername, ""), ValidateUsername)
		if err != nil {
			return a, err
		}
	}

	if a.Password == "" {
		saved := config.Default(prefs, config.PrefPassword, "")
		label := "Enter your Crunchyroll password"
		if saved != "" {
			label += " (press Enter to use saved password)"
		}

		p := promptui.Prompt{
			Label: label,
			Mask:  '*',
			Validate: func(v string) error {
				if v == "" && saved != "" {
					return nil
				}
				return ValidatePassword(v)
			},
		}
		a.Password, err = p.Run()
		if err != nil {
			return a, err
		}
		if a.Password == "" {
			a.Password = saved
		}
	}

	if a.URL == "" {
		a.URL, err = askText("Enter URL of the Crunchyroll manga", config.Default(prefs, config.PrefURL, ""), ValidateURL)
		if err != nil {
			return a, err
		}
	} else if err := ValidateURL(a.URL); err != nil {
		return a, err
	}

	if a.Browser == "" {
		if a.Browser, err = askSelect("Which browser shall we use?", ch.Browsers, config.Default(prefs, config.PrefBrowser, "")); err != nil {
			return a, err
		}
	}

	if a.Format == "" {
		if a.Format, err = askSelect("How shall we save the manga?", ch.Formats, config.Default(prefs, config.PrefFormat, "")); err != nil {
			return a, err
		}
	}

	if a.PageSize == "" && ch.NeedsPageSize != nil && ch.NeedsPageSize(a.Format) {
		if a.PageSize, err = askSelect("PDF page size?", ch.PageSizes, config.Default(prefs, config.PrefPageSize, "LETTER")); err != nil {
			return a, err
		}
	}

	if a.Divide == "" {
		if a.Divide, err = askSelect("Divide export file?", ch.Divides, config.Default(prefs, config.PrefDivide, "")); err != nil {
			return a, err
		}
	}

	if !a.Yes {
		consent, err := askSelect("Go ahead with the above settings?", []string{"Yes", "No"}, "Yes")
		if err != nil {
			return a, err
		}
		if consent != "Yes" {
			return a, ErrUserAbort
		}
		a.Yes = true
	}

	return a, nil
}

func askText(label, def string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Validate:  validate,
	}

	v, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", label, err)
	}
	return v, nil
}

func askSelect(label string, items []string, def string) (string, error) {
	s := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}
	for i, it := range items {
		if it == def {
			s.CursorPos = i
			break
		}
	}

	_, v, err := s.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return v, nil
}

// Confirm asks a yes/no question. Anything but an explicit yes is false.
func Confirm(label string) bool {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	return err == nil
}
