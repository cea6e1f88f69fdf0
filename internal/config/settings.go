package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors holds the CSS selectors used to locate data in a schedule page.
// The defaults match the IVU portal markup.
type Selectors struct {
	Day       string `yaml:"day"`
	AllocDay  string `yaml:"allocation_day"`
	DateAttr  string `yaml:"date_attr"`
	Title     string `yaml:"title"`
	TimeBegin string `yaml:"time_begin"`
	TimeEnd   string `yaml:"time_end"`
}

// Settings is the optional, file-based configuration of the converter.
type Settings struct {
	// Timezone is the IANA zone the portal's naive times are expressed in.
	Timezone string `yaml:"timezone"`

	// CalendarName is written as X-WR-CALNAME.
	CalendarName string `yaml:"calendar_name"`

	// Language selects the operator message locale.
	Language string `yaml:"language"`

	// User is the portal account used for HTTP inputs.
	User string `yaml:"user"`

	Selectors Selectors `yaml:"selectors"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.Normalize()
	return s
}

// Normalize fills in missing values with defaults so that partial files
// still behave correctly.
func (s *Settings) Normalize() {
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}
	if s.CalendarName == "" {
		s.CalendarName = DefaultCalName
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}

	sel := &s.Selectors
	if sel.Day == "" {
		sel.Day = SelectorDay
	}
	if sel.AllocDay == "" {
		sel.AllocDay = SelectorAllocDay
	}
	if sel.DateAttr == "" {
		sel.DateAttr = AttrDate
	}
	if sel.Title == "" {
		sel.Title = SelectorTitle
	}
	if sel.TimeBegin == "" {
		sel.TimeBegin = SelectorTimeBegin
	}
	if sel.TimeEnd == "" {
		sel.TimeEnd = SelectorTimeEnd
	}
}

// LoadSettings reads a YAML settings file. An empty path yields the defaults.
// Unlike the calendar output, a missing file here is an error: the operator
// asked for it explicitly.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}
	s.Normalize()

	if s.Timezone == "Local" {
		return nil, fmt.Errorf("%s: %s", ErrTimezone, ErrTimezoneLocal)
	}

	slog.Debug(MsgSettingsLoaded,
		LogKeyComponent, CompSettings,
		LogKeyFile, path,
		LogKeyTimezone, s.Timezone,
	)
	return &s, nil
}
