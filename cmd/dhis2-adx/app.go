package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/version"
	"github.com/openimis/openimis-be-dhis2-py/internal/modkit"
	"github.com/openimis/openimis-be-dhis2-py/internal/modkit/repokit"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/config"
	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/logger"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/store"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/module"
)

// app holds what every command shares
type app struct {
	out  io.Writer
	root config.Conf

	// open boots the store and the module; tune, when non nil, adjusts the
	// env settings before the module is built. Tests replace it
	open func(ctx context.Context, tune func(*module.Options)) (*module.Module, func(), error)
}

func newCLI(out io.Writer) *cobra.Command {
	a := &app{out: out, root: config.New()}
	a.open = a.openStore

	cmd := &cobra.Command{
		Use:           "dhis2-adx",
		Short:         "Export openIMIS data to DHIS2 as ADX",
		Version:       version.Info().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newExportCmd(a),
		newPushCmd(a),
		newSyncMonthlyCmd(a),
		newLintCmd(a),
		newCubesCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) openStore(ctx context.Context, tune func(*module.Options)) (*module.Module, func(), error) {
	log := logger.Get()
	st, err := store.Open(ctx, store.ConfigFromEnv(a.root, "dhis2-adx", true), store.WithLogger(*log))
	if err != nil {
		return nil, nil, err
	}
	// panics when a configured backend does not answer
	repokit.MustGuard(ctx, st)

	closeFn := func() {
		if err := st.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}
	cfg := module.FromConfig(a.root)
	if tune != nil {
		tune(&cfg)
	}
	m, err := module.NewWith(modkit.Deps{Log: *log, Cfg: a.root, PG: st.PG, CH: st.CH}, cfg)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return m, closeFn, nil
}

// periodFlags is the --period / --month pair shared by export, push and lint
type periodFlags struct {
	period string
	month  string
}

func (f *periodFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.period, "period", "", "Period in the cube's period type, e.g. 2019-01-01/P2Y")
	cmd.Flags().StringVar(&f.month, "month", "", "Calendar month as YYYYMM; shorthand for an ISO P1M period")
	cmd.MarkFlagsMutuallyExclusive("period", "month")
}

// resolve returns --period as given, or --month in ISO form. Neither means last month
func (f *periodFlags) resolve(now func() period.Period) (string, error) {
	if f.period != "" {
		return f.period, nil
	}
	if f.month == "" {
		return now().String(), nil
	}
	p, err := period.Parse(f.month, period.Monthly{})
	if err != nil {
		return "", perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid month"), "month")
	}
	return p.String(), nil
}

// workersFlag lets --workers win over ADX_WORKERS; nil when the flag was not given
func workersFlag(cmd *cobra.Command, n int) func(*module.Options) {
	if !cmd.Flags().Changed("workers") {
		return nil
	}
	return func(o *module.Options) { o.Workers = n }
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
