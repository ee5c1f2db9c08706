package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ScheduleConfig lists the start times offered when scheduling an
// interview and the settings of the optional auto-complete sweeper.
type ScheduleConfig struct {
	scheduleEnv

	Slots    []string       // HH:MM, ascending
	Location *time.Location // parsed Timezone
}

type scheduleEnv struct {
	SlotsFile string `env:"SCHEDULE_SLOTS_FILE"`
	Timezone  string `env:"SCHEDULE_TIMEZONE" envDefault:"UTC"`

	AutoCompleteEnabled  bool          `env:"AUTO_COMPLETE_ENABLED" envDefault:"false"`
	AutoCompleteAfter    time.Duration `env:"AUTO_COMPLETE_AFTER" envDefault:"24h"`
	AutoCompleteEveryMin uint64        `env:"AUTO_COMPLETE_EVERY_MIN" envDefault:"10"`
}

// slotsFile is the YAML layout of SCHEDULE_SLOTS_FILE.  An explicit list
// wins over a range.
//
//	slots: ["09:00", "09:30"]
//
// or
//
//	start: "09:00"
//	end: "17:00"
//	step: 30m
type slotsFile struct {
	Slots []string `yaml:"slots"`
	Start string   `yaml:"start"`
	End   string   `yaml:"end"`
	Step  string   `yaml:"step"`
}

// DefaultSlots is every half hour from 09:00 to 17:00 inclusive.
func DefaultSlots() []string {
	out, _ := slotRange("09:00", "17:00", 30*time.Minute)
	return out
}

// LoadScheduleConfig reads the environment and, when configured, the
// YAML slot file.
func LoadScheduleConfig() (ScheduleConfig, error) {
	parsed, err := env.ParseAs[scheduleEnv]()
	if err != nil {
		return ScheduleConfig{}, err
	}
	cfg := ScheduleConfig{scheduleEnv: parsed}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("SCHEDULE_TIMEZONE: %w", err)
	}
	cfg.Location = loc
	if cfg.AutoCompleteAfter <= 0 {
		cfg.AutoCompleteAfter = 24 * time.Hour
	}
	if cfg.AutoCompleteEveryMin == 0 {
		cfg.AutoCompleteEveryMin = 10
	}
	if cfg.SlotsFile == "" {
		cfg.Slots = DefaultSlots()
		return cfg, nil
	}
	raw, err := os.ReadFile(cfg.SlotsFile)
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("read slots file: %w", err)
	}
	slots, err := ParseSlots(raw)
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("slots file %s: %w", cfg.SlotsFile, err)
	}
	cfg.Slots = slots
	return cfg, nil
}

// ParseSlots decodes a YAML slot document.
func ParseSlots(raw []byte) ([]string, error) {
	var f slotsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if len(f.Slots) > 0 {
		out := make([]string, 0, len(f.Slots))
		for _, s := range f.Slots {
			t, err := time.Parse("15:04", s)
			if err != nil {
				return nil, fmt.Errorf("slot %q: want HH:MM", s)
			}
			out = append(out, t.Format("15:04"))
		}
		return out, nil
	}
	if f.Start == "" || f.End == "" {
		return nil, fmt.Errorf("either slots or start/end is required")
	}
	step := 30 * time.Minute
	if f.Step != "" {
		d, err := time.ParseDuration(f.Step)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("step %q: want a positive duration", f.Step)
		}
		step = d
	}
	return slotRange(f.Start, f.End, step)
}

// slotRange lists HH:MM labels from start to end inclusive.  The step
// must be a positive whole number of minutes.
func slotRange(start, end string, step time.Duration) ([]string, error) {
	if step < time.Minute || step%time.Minute != 0 {
		return nil, fmt.Errorf("step %s: want whole minutes, at least 1m", step)
	}
	from, err := time.Parse("15:04", start)
	if err != nil {
		return nil, fmt.Errorf("start %q: want HH:MM", start)
	}
	to, err := time.Parse("15:04", end)
	if err != nil {
		return nil, fmt.Errorf("end %q: want HH:MM", end)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end %s is before start %s", end, start)
	}
	var out []string
	for t := from; !t.After(to); t = t.Add(step) {
		out = append(out, t.Format("15:04"))
	}
	return out, nil
}

// StartsOn returns the absolute start instant of every slot on day, in
// the configured location.
func (c ScheduleConfig) StartsOn(day time.Time) []time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.In(loc).Date()
	out := make([]time.Time, 0, len(c.Slots))
	for _, s := range c.Slots {
		t, err := time.Parse("15:04", s)
		if err != nil {
			continue
		}
		out = append(out, time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc))
	}
	return out
}
