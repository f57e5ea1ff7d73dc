package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
)

var lastMonth = func() period.Period { return period.PreviousMonth(time.Now()) }

// ExportCmd writes one cube as an ADX document
type ExportCmd struct {
	app       *app
	cube      string
	periods   periodFlags
	out       string
	namespace bool
	indent    bool
	workers   int
}

func newExportCmd(a *app) *cobra.Command {
	ec := &ExportCmd{app: a}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build a cube and write the ADX document",
		RunE:  ec.run,
	}
	cmd.Flags().StringVar(&ec.cube, "cube", "insurees", "Cube name")
	ec.periods.bind(cmd)
	cmd.Flags().StringVar(&ec.out, "out", "", "Output file, stdout when empty")
	cmd.Flags().BoolVar(&ec.namespace, "namespace", false, "Write xmlns on the root element")
	cmd.Flags().BoolVar(&ec.indent, "indent", true, "Pretty print the document")
	cmd.Flags().IntVar(&ec.workers, "workers", 4, "Concurrent facility builds")
	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	p, err := ec.periods.resolve(lastMonth)
	if err != nil {
		return err
	}
	m, closeFn, err := ec.app.open(cmd.Context(), workersFlag(cmd, ec.workers))
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := m.Service().Export(cmd.Context(), domain.ExportInput{
		Cube:      ec.cube,
		Period:    p,
		Namespace: ec.namespace,
		Indent:    ec.indent,
	})
	if err != nil {
		return err
	}
	if ec.out == "" {
		_, err = ec.app.out.Write(res.XML)
		return err
	}
	return os.WriteFile(ec.out, res.XML, 0o644)
}

// PushCmd exports a cube and submits it to DHIS2
type PushCmd struct {
	app     *app
	cube    string
	periods periodFlags
	workers int
}

func newPushCmd(a *app) *cobra.Command {
	pc := &PushCmd{app: a}
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Build a cube and submit it to DHIS2",
		RunE:  pc.run,
	}
	cmd.Flags().StringVar(&pc.cube, "cube", "insurees", "Cube name")
	pc.periods.bind(cmd)
	cmd.Flags().IntVar(&pc.workers, "workers", 4, "Concurrent facility builds")
	return cmd
}

func (pc *PushCmd) run(cmd *cobra.Command, _ []string) error {
	p, err := pc.periods.resolve(lastMonth)
	if err != nil {
		return err
	}
	m, closeFn, err := pc.app.open(cmd.Context(), workersFlag(cmd, pc.workers))
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := m.Service().Push(cmd.Context(), domain.ExportInput{Cube: pc.cube, Period: p})
	if res != nil {
		if werr := pc.app.printJSON(res); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// SyncMonthlyCmd pushes every registered cube for a calendar month
type SyncMonthlyCmd struct {
	app   *app
	month string
}

func newSyncMonthlyCmd(a *app) *cobra.Command {
	sc := &SyncMonthlyCmd{app: a}
	cmd := &cobra.Command{
		Use:   "sync-monthly",
		Short: "Push every registered cube for one month, the previous one by default",
		RunE:  sc.run,
	}
	cmd.Flags().StringVar(&sc.month, "month", "", "Calendar month as YYYYMM")
	return cmd
}

func (sc *SyncMonthlyCmd) run(cmd *cobra.Command, _ []string) error {
	var month period.Period
	if sc.month != "" {
		f := periodFlags{month: sc.month}
		s, err := f.resolve(lastMonth)
		if err != nil {
			return err
		}
		month, _ = period.Parse(s, period.ISO{})
	}

	m, closeFn, err := sc.app.open(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := m.Service().SyncMonthly(cmd.Context(), month)
	if werr := sc.app.printJSON(res); werr != nil && err == nil {
		err = werr
	}
	return err
}

// LintCmd reports category options that overlap or leave gaps
type LintCmd struct {
	app      *app
	cube     string
	periods  periodFlags
	facility string
}

func newLintCmd(a *app) *cobra.Command {
	lc := &LintCmd{app: a}
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Report category options that overlap or leave gaps",
		RunE:  lc.run,
	}
	cmd.Flags().StringVar(&lc.cube, "cube", "insurees", "Cube name")
	lc.periods.bind(cmd)
	cmd.Flags().StringVar(&lc.facility, "facility", "", "Only this health facility code")
	return cmd
}

func (lc *LintCmd) run(cmd *cobra.Command, _ []string) error {
	p, err := lc.periods.resolve(lastMonth)
	if err != nil {
		return err
	}
	m, closeFn, err := lc.app.open(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := m.Service().Lint(cmd.Context(), domain.LintInput{Cube: lc.cube, Period: p, Facility: lc.facility})
	if err != nil {
		return err
	}
	return lc.app.printJSON(res)
}

func newCubesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cubes",
		Short: "List registered cubes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, closeFn, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeFn()
			return a.printJSON(m.Service().Cubes(cmd.Context()))
		},
	}
}
