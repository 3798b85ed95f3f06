package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/weave/internal/app"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/zerr"
)

type requestFlags struct {
	optional bool
	multiple bool
	filter   []string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.optional, "optional", false, "Resolve to nothing instead of failing when unbound")
	cmd.Flags().BoolVar(&f.multiple, "multiple", false, "Resolve every binding as a list")
	cmd.Flags().StringArrayVar(&f.filter, "filter", nil, "Only consider bindings with this metadata (key=value, repeatable)")
}

func (f *requestFlags) request(token string) (app.Request, error) {
	req := app.Request{Token: token, Optional: f.optional, Multiple: f.multiple}
	for _, kv := range f.filter {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return req, zerr.With(zerr.Wrap(domain.ErrInvalidOperation, "filter must be key=value"), "filter", kv)
		}
		if req.Filter == nil {
			req.Filter = domain.Metadata{}
		}
		req.Filter[k] = v
	}
	return req, nil
}
