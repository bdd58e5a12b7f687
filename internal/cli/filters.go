package cli

import (
	"contentdesk/internal/filter"

	"github.com/spf13/cobra"
)

// filterFlags are the facet selections accepted by list-style commands.
type filterFlags struct {
	pairs  []string
	search string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.pairs, "filter", nil, "Facet selection section=value (repeatable; values OR within a section, sections AND)")
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive text search")
}

func (f *filterFlags) state(sections []filter.Section) (filter.State, error) {
	st, err := filter.ParseSelections(sections, f.pairs)
	if err != nil {
		return nil, err
	}
	if f.search != "" {
		st = filter.WithSearch(sections, st, f.search)
	}
	return st, nil
}
