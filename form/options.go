package form

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/collection"
	"github.com/reoring/formskema/derive"
	"github.com/reoring/formskema/fieldpath"
)

// Options describes the conventions of a form. Paths use the dotted and
// bracketed syntax of fieldpath.Parse.
type Options struct {
	Collections CollectionOptions `yaml:"collections"`
	Species     SpeciesOptions    `yaml:"species"`
	Ionization  IonizationOptions `yaml:"ionization"`
	Diagnostics ReferenceOptions  `yaml:"diagnostics"`
	Output      OutputOptions     `yaml:"output"`
	Derivations []derive.Spec     `yaml:"derivations"`
	// Language selects violation messages ("en" or "ja").
	Language string `yaml:"language"`

	// Logger receives load diagnostics, rejected edits and blocked
	// submissions. nil discards.
	Logger *log.Logger `yaml:"-"`
}

// CollectionOptions tunes defaulting of repeated structures.
type CollectionOptions struct {
	// NonEmpty collections start with one entry built from their first
	// candidate.
	NonEmpty []string `yaml:"nonEmpty"`
	// Discriminated collections must declare items.oneOf.
	Discriminated []string `yaml:"discriminated"`
	// Discriminator is the member selecting oneOf candidates.
	Discriminator string `yaml:"discriminator"`
}

type SpeciesOptions struct {
	Path          string `yaml:"path"`
	Discriminator string `yaml:"discriminator"`
	Electron      string `yaml:"electron"`
	NameField     string `yaml:"nameField"`
	// ChargeField and FixedChargeField are the ion charge members governed
	// by the ion mode.
	ChargeField      string `yaml:"chargeField"`
	FixedChargeField string `yaml:"fixedChargeField"`
}

type IonizationOptions struct {
	Path           string `yaml:"path"`
	SpeciesField   string `yaml:"speciesField"`
	IonsFlag       string `yaml:"ionsFlag"`
	IonizationFlag string `yaml:"ionizationFlag"`
}

// ReferenceOptions names a collection whose entries refer to a species.
type ReferenceOptions struct {
	Path         string `yaml:"path"`
	SpeciesField string `yaml:"speciesField"`
}

type OutputOptions struct {
	// Field receives the composed output location on submission.
	Field     string `yaml:"field"`
	Separator string `yaml:"separator"`
}

// DefaultOptions returns the PIConGPU form conventions.
func DefaultOptions() Options {
	return Options{
		Collections: CollectionOptions{
			NonEmpty:      []string{"species", "diagnostics"},
			Discriminated: []string{"species"},
			Discriminator: "type",
		},
		Species: SpeciesOptions{
			Path:             "species",
			Discriminator:    "type",
			Electron:         "electron",
			NameField:        "name",
			ChargeField:      "charge_state",
			FixedChargeField: "picongpu_fixed_charge",
		},
		Ionization: IonizationOptions{
			Path:           "ionization_models",
			SpeciesField:   "ion_species",
			IonsFlag:       "ENABLE_IONS",
			IonizationFlag: "ENABLE_IONIZATION",
		},
		Diagnostics: ReferenceOptions{Path: "diagnostics", SpeciesField: "species_name"},
		Output:      OutputOptions{Field: "OUTPUT_DIRECTORY_PATH", Separator: "/"},
		Derivations: []derive.Spec{
			{Target: "upper_bound", Op: derive.OpProduct, Inputs: []string{"number_of_cells", "cell_size"}},
		},
		Language: "en",
	}
}

// LoadOptions reads YAML options from path. Keys missing from the file keep
// their DefaultOptions value; lists given in the file replace the defaults.
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, err
	}
	defer f.Close()
	return ReadOptions(f)
}

// ReadOptions is LoadOptions over a reader.
func ReadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		return Options{}, fmt.Errorf("form: options: %w", err)
	}
	return opts, nil
}

// compiled holds Options with every path parsed.
type compiled struct {
	nonEmpty      []fieldpath.Path
	discriminated []string
	discriminator string
	rules         []derive.Rule
	collection    collection.Config
	output        fieldpath.Path
	separator     string
}

func (o Options) compile() (*compiled, error) {
	var problems []string
	parse := func(what, s string) fieldpath.Path {
		if s == "" {
			return nil
		}
		p, err := fieldpath.Parse(s)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", what, err))
		}
		return p
	}

	c := &compiled{
		discriminated: o.Collections.Discriminated,
		discriminator: o.Collections.Discriminator,
		separator:     o.Output.Separator,
	}
	if c.discriminator == "" {
		c.discriminator = "type"
	}
	if c.separator == "" {
		c.separator = "/"
	}
	for i, s := range o.Collections.NonEmpty {
		c.nonEmpty = append(c.nonEmpty, parse(fmt.Sprintf("collections.nonEmpty[%d]", i), s))
	}

	sp := collection.Species{
		Path:          parse("species.path", o.Species.Path),
		Discriminator: o.Species.Discriminator,
		NameField:     o.Species.NameField,

		ChargeField:      o.Species.ChargeField,
		FixedChargeField: o.Species.FixedChargeField,
	}
	if sp.Discriminator == "" {
		sp.Discriminator = c.discriminator
	}
	if o.Species.Electron != "" {
		sp.Electron = o.Species.Electron
	}
	ions := collection.Ions{
		Models:         parse("ionization.path", o.Ionization.Path),
		IonsFlag:       parse("ionization.ionsFlag", o.Ionization.IonsFlag),
		IonizationFlag: parse("ionization.ionizationFlag", o.Ionization.IonizationFlag),
	}
	var refs []collection.Reference
	if len(ions.Models) > 0 && o.Ionization.SpeciesField != "" {
		refs = append(refs, collection.Reference{Path: ions.Models, Field: o.Ionization.SpeciesField})
	}
	if p := parse("diagnostics.path", o.Diagnostics.Path); len(p) > 0 && o.Diagnostics.SpeciesField != "" {
		refs = append(refs, collection.Reference{Path: p, Field: o.Diagnostics.SpeciesField})
	}
	c.collection = collection.Config{Species: sp, References: refs, Ions: ions}
	c.output = parse("output.field", o.Output.Field)

	rules, err := derive.FromSpecs(o.Derivations)
	var cfg *formskema.ConfigurationError
	if errors.As(err, &cfg) {
		problems = append(problems, cfg.Problems...)
	} else if err != nil {
		problems = append(problems, err.Error())
	}
	c.rules = rules

	if len(problems) > 0 {
		return nil, &formskema.ConfigurationError{Problems: problems}
	}
	return c, nil
}
