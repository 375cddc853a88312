package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/color"
	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/style"
)

// Field is one registered setting.
type Field struct {
	Key         string
	Value       any
	Description string

	// Allowed restricts string settings to a fixed set of values.
	Allowed []string
}

// Pretty renders the field for "tilawah config info".
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable that overrides the field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Tilawah + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string   `json:"key"`
		Value       any      `json:"value"`
		Default     any      `json:"default"`
		Description string   `json:"description"`
		Type        string   `json:"type"`
		Allowed     []string `json:"allowed,omitempty"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        reflect.TypeOf(f.Value).String(),
		Allowed:     f.Allowed,
	})
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func register(f Field) {
	if _, exists := Default[f.Key]; exists {
		panic("duplicate config key: " + f.Key)
	}
	Default[f.Key] = f
	EnvExposed = append(EnvExposed, f.Key)
}

func init() {
	register(Field{
		Key:         key.PlayerBackend,
		Value:       "mpv",
		Description: "Audio backend.\nmpv streams through an external mpv process, beep downloads and decodes in-process",
		Allowed:     []string{"mpv", "beep"},
	})
	register(Field{Key: key.PlayerMpvPath, Value: "", Description: "Path to the mpv binary.\nLooked up in PATH when empty"})
	register(Field{
		Key:         key.PlayerUnlock,
		Value:       "auto",
		Description: "Run a silent play/pause cycle before the first playback of each item.\nauto enables it on darwin and ios",
		Allowed:     []string{"auto", "always", "never"},
	})
	register(Field{Key: key.PlayerLoadTimeout, Value: 10, Description: "Seconds to wait for audio to become ready"})
	register(Field{Key: key.PlayerReplayDelay, Value: 3, Description: "Seconds to wait before replaying a finished recitation"})
	register(Field{Key: key.PlayerSettleDelay, Value: 500, Description: "Milliseconds between scrolling to the next verse and playing it"})
	register(Field{Key: key.PlayerReplayOnEnd, Value: false, Description: "Replay the full surah after it ends"})
	register(Field{
		Key:         key.QuranReciter,
		Value:       "05",
		Description: "Reciter id.\nType \"tilawah reciters\" to list them",
		Allowed:     []string{"01", "02", "03", "04", "05"},
	})
	register(Field{Key: key.QuranAPIURL, Value: "https://equran.id/api/v2", Description: "Base URL of the Qur'an API"})
	register(Field{Key: key.QuranCacheLifetime, Value: 168, Description: "Hours to keep API responses cached"})
	register(Field{
		Key:         key.IconsVariant,
		Value:       "plain",
		Description: "Icons variant",
		Allowed:     []string{"emoji", "nerd", "plain", "squares"},
	})
	register(Field{Key: key.TUIItemSpacing, Value: 1, Description: "Spacing between items in the TUI"})
	register(Field{Key: key.TUIShowTranslation, Value: true, Description: "Show the translation under each verse"})
	register(Field{Key: key.TUIShowLatin, Value: false, Description: "Show the transliteration under each verse"})
	register(Field{Key: key.LogsWrite, Value: false, Description: "Write logs"})
	register(Field{
		Key:         key.LogsLevel,
		Value:       "info",
		Description: "From less to most verbose",
		Allowed:     []string{"panic", "fatal", "error", "warn", "info", "debug", "trace"},
	})
	register(Field{Key: key.LogsJson, Value: false, Description: "Use json format for logs"})
	register(Field{Key: key.CliColored, Value: true, Description: "Enable colored CLI output"})
	register(Field{Key: key.CliVersionCheck, Value: true, Description: "Check for new versions on start"})

	if len(Default) != key.DefinedFieldsCount {
		panic(fmt.Sprintf("registered %d config fields, expected %d", len(Default), key.DefinedFieldsCount))
	}
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"join":     strings.Join,
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(strconv.Quote(value))
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl .Value }}
{{ blue "Type:" }}    {{ typename .Value }}{{ if .Allowed }}
{{ blue "Allowed:" }} {{ join .Allowed ", " }}{{ end }}`))
