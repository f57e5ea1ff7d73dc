package main

import (
	"io"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/adx"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/adxml"
	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
)

// InspectCmd summarizes an ADX document without touching any store
type InspectCmd struct {
	app *app
}

type groupSummary struct {
	OrgUnit string `json:"orgUnit"`
	Period  string `json:"period"`
	DataSet string `json:"dataSet"`
	Values  int    `json:"values"`
}

type inspectSummary struct {
	DataSet  string         `json:"dataSet"`
	Exported *time.Time     `json:"exported,omitempty"`
	Groups   []groupSummary `json:"groups"`
	Values   int            `json:"values"`
}

func newInspectCmd(a *app) *cobra.Command {
	ic := &InspectCmd{app: a}
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarize an ADX document, read from stdin when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ic.run,
	}
}

func (ic *InspectCmd) run(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "open document"), "file")
		}
		defer f.Close()
		r = f
	}

	cube, err := adxml.Decode(r)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeValidation, "not an adx document")
	}
	return ic.app.printJSON(summarize(cube))
}

func summarize(c *adx.Cube) inspectSummary {
	s := inspectSummary{
		DataSet: c.Name,
		Values:  c.ValueCount(),
		Groups: lo.Map(c.Groups, func(g adx.Group, _ int) groupSummary {
			return groupSummary{OrgUnit: g.OrgUnit, Period: g.Period, DataSet: g.DataSet, Values: len(g.DataValues)}
		}),
	}
	if !c.Exported.IsZero() {
		s.Exported = &c.Exported
	}
	return s
}
