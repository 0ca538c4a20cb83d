// Package messages holds the user-facing compile error catalogue.
//
// Messages are defined in English and rendered through a go-i18n bundle, so
// an error raised by the compiler can be shown again in the user's language:
//
//	_, err := compiler.Compile("=SUM()")
//	fmt.Println(messages.Localize(err, "fr"))
//
// Translations are embedded TOML files named active.<lang>.toml. More can be
// added at run time with AddTranslations.
package messages

import (
	"embed"
	"errors"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/sandrolain/gosheet/pkg/types"
)

// Message ids.
const (
	InvalidFormula    = "InvalidFormula"
	InvalidOperator   = "InvalidOperator"
	UnknownFunction   = "UnknownFunction"
	TooFewArguments   = "TooFewArguments"
	TooManyArguments  = "TooManyArguments"
	RepeatingGroup    = "RepeatingGroup"
	ExpectedReference = "ExpectedReference"
	MetaArgument      = "MetaArgument"
)

var defaults = []*i18n.Message{
	{ID: InvalidFormula, Other: "Invalid formula"},
	{ID: InvalidOperator, Other: "Invalid operator {{.Operator}}"},
	{ID: UnknownFunction, Other: `Unknown function: "{{.Function}}"`},
	{ID: TooFewArguments, Other: "Invalid number of arguments for the {{.Function}} function. Expected {{.Expected}} minimum, but got {{.Actual}} instead."},
	{ID: TooManyArguments, Other: "Invalid number of arguments for the {{.Function}} function. Expected {{.Expected}} maximum, but got {{.Actual}} instead."},
	{ID: RepeatingGroup, Other: "Invalid number of arguments for the {{.Function}} function. Expected all arguments after position {{.Position}} to be supplied by groups of {{.Group}} arguments"},
	{ID: ExpectedReference, Other: "Function {{.Function}} expects the parameter {{.Param}} to be reference to a cell or range, not a {{.Kind}}."},
	{ID: MetaArgument, Other: "Argument must be a reference to a cell or range."},
}

//go:embed translations/*.toml
var translations embed.FS

var (
	mu       sync.RWMutex
	bundle   *i18n.Bundle
	english  *i18n.Localizer
	loadOnce sync.Once
)

func load() {
	loadOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		if err := b.AddMessages(language.English, defaults...); err != nil {
			panic(err)
		}
		entries, err := translations.ReadDir("translations")
		if err != nil {
			panic(err)
		}
		for _, entry := range entries {
			if _, err := b.LoadMessageFileFS(translations, "translations/"+entry.Name()); err != nil {
				panic(err)
			}
		}
		bundle = b
		english = i18n.NewLocalizer(b, language.English.String())
	})
}

// AddTranslations registers a translation file. path must be named like
// active.<lang>.toml so the bundle can infer the language and format.
func AddTranslations(buf []byte, path string) error {
	load()
	mu.Lock()
	defer mu.Unlock()
	_, err := bundle.ParseMessageFileBytes(buf, path)
	return err
}

// Render renders message id in English.
func Render(id string, data map[string]any) string {
	load()
	mu.RLock()
	defer mu.RUnlock()
	return render(english, id, data)
}

func render(loc *i18n.Localizer, id string, data map[string]any) string {
	s, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return s
}

// New builds a formula error whose message is message id rendered in English.
func New(code types.ErrorCode, id string, data map[string]any) *types.Error {
	return types.NewError(code, Render(id, data), -1).WithMessage(id, data)
}

// Localize renders err in the first supported language of langs. Errors that
// do not come from the catalogue are returned as err.Error(). A nil error
// renders as "".
func Localize(err error, langs ...string) string {
	if err == nil {
		return ""
	}
	var fe *types.Error
	if !errors.As(err, &fe) || fe.MessageID == "" {
		return err.Error()
	}
	load()
	mu.RLock()
	defer mu.RUnlock()
	return render(i18n.NewLocalizer(bundle, langs...), fe.MessageID, fe.Data)
}
