package market

import "fmt"

// Source kinds. A source is a tagged variant: a local CSV file or a remote
// CSV URL, each naming its timestamp and value columns.
const (
	SourceCSV    = "csv"
	SourceURLCSV = "url_csv"
)

// Source describes where an index's price series comes from.
type Source struct {
	Type       string `json:"type" yaml:"type"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	TimeField  string `json:"time_field" yaml:"time_field"`
	ValueField string `json:"value_field" yaml:"value_field"`
}

// Validate checks that the source carries the fields its variant requires.
func (s Source) Validate() error {
	if s.TimeField == "" || s.ValueField == "" {
		return fmt.Errorf("%w: source requires time_field and value_field", ErrBadConfig)
	}
	switch s.Type {
	case SourceCSV:
		if s.Path == "" {
			return fmt.Errorf("%w: csv source requires path", ErrBadConfig)
		}
	case SourceURLCSV:
		if s.URL == "" {
			return fmt.Errorf("%w: url_csv source requires url", ErrBadConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported source type %q", ErrBadConfig, s.Type)
	}
	return nil
}

// Index is a named, tradable influence index.
type Index struct {
	Symbol      string `json:"symbol" yaml:"symbol"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"desc" yaml:"desc"`
	Decimals    int    `json:"decimals,omitempty" yaml:"decimals,omitempty"`
	Source      Source `json:"source" yaml:"source"`
}

// Validate checks the registry entry contract.
func (i Index) Validate() error {
	if i.Symbol == "" {
		return fmt.Errorf("%w: index requires a symbol", ErrBadConfig)
	}
	if i.Name == "" {
		return fmt.Errorf("%w: index %s requires a name", ErrBadConfig, i.Symbol)
	}
	if err := i.Source.Validate(); err != nil {
		return fmt.Errorf("index %s: %w", i.Symbol, err)
	}
	return nil
}
