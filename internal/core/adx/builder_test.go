package adx

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
	kit "github.com/openimis/openimis-be-dhis2-py/internal/platform/testkit"
)

var exportedAt = time.Date(2022, 7, 14, 9, 30, 0, 0, time.UTC)

func TestBuild_EndToEnd(t *testing.T) {
	b := NewBuilder(testDefinition(insureesValue(ageGroup, sex)), sliceFilter, WithClock(kit.Clock(exportedAt)))
	cube, err := b.Build(context.Background(), "2019-01-01/P2Y", []facility{testFacility()})
	if err != nil {
		t.Fatalf("Build err = %v", err)
	}
	want := &Cube{
		Name:     "TEST_HF_ADX_DEFINITION",
		Exported: exportedAt,
		Groups: []Group{{
			OrgUnit:      "HFT",
			Period:       "2019-01-01/P2Y",
			DataSet:      "TEST_HF_ADX_DEFINITION",
			Comment:      "Test Comment",
			CompleteDate: time.Date(2022, 7, 14, 0, 0, 0, 0, time.UTC),
			DataValues: []DataValue{
				{"NB_INSUREES", "1", []Aggregation{{"ageGroup", "<=50yo"}, {"sex", "M"}}},
				{"NB_INSUREES", "2", []Aggregation{{"ageGroup", "<=50yo"}, {"sex", "F"}}},
				{"NB_INSUREES", "0", []Aggregation{{"ageGroup", ">50yo"}, {"sex", "M"}}},
				{"NB_INSUREES", "0", []Aggregation{{"ageGroup", ">50yo"}, {"sex", "F"}}},
			},
		}},
	}
	if !reflect.DeepEqual(cube, want) {
		t.Fatalf("cube =\n%+v\nwant\n%+v", cube, want)
	}
	if cube.ValueCount() != 4 {
		t.Fatalf("ValueCount = %d", cube.ValueCount())
	}
}

func TestBuild_NoCategory(t *testing.T) {
	b := NewBuilder(testDefinition(insureesValue()), sliceFilter, WithClock(kit.Clock(exportedAt)))
	cube, err := b.Build(context.Background(), "2019-01-01/P2Y", []facility{testFacility()})
	if err != nil {
		t.Fatalf("Build err = %v", err)
	}
	dvs := cube.Groups[0].DataValues
	if len(dvs) != 1 || dvs[0].Value != "3" || len(dvs[0].Aggregations) != 0 {
		t.Fatalf("data values = %+v", dvs)
	}
}

func TestBuild_InvalidPeriodFailsBeforeDataAccess(t *testing.T) {
	for _, in := range []string{"2019-01-01/A2X", "2019-01-01P2Y"} {
		var touched atomic.Int32
		dv := insureesValue(sex)
		dv.Dataset = func(_ context.Context, hf facility) ([]insuree, error) {
			touched.Add(1)
			return hf.insurees, nil
		}
		b := NewBuilder(testDefinition(dv), sliceFilter)
		cube, err := b.Build(context.Background(), in, []facility{testFacility()})
		if !errors.Is(err, period.ErrInvalidPeriod) || cube != nil {
			t.Fatalf("Build(%q) = %v, %v", in, cube, err)
		}
		var pe *period.ParseError
		if !errors.As(err, &pe) || pe.Input != in {
			t.Fatalf("Build(%q) error lost its input: %v", in, err)
		}
		if touched.Load() != 0 {
			t.Fatalf("Build(%q) touched the data source", in)
		}
	}
}

func manyFacilities(n int) []facility {
	out := make([]facility, n)
	for i := range n {
		hf := testFacility()
		hf.code = fmt.Sprintf("HF%02d", i)
		// drop i%5 rows so every facility has a distinct count
		hf.insurees = hf.insurees[:5-i%5]
		if i%4 == 3 {
			hf.level = "H"
		}
		out[i] = hf
	}
	return out
}

func TestBuild_ConcurrentKeepsDeclarationOrderAndSelectsOrgUnits(t *testing.T) {
	def := testDefinition(insureesValue(), insureesValue(sex))
	def.Groups = append(def.Groups, GroupDefinition[facility, []insuree, pred]{
		DataSet:     "HOSPITALS",
		OrgUnitType: func(hf facility) bool { return hf.level == "H" },
		OrgUnitCode: func(hf facility) string { return "H-" + hf.code },
		DataValues:  []DataValueDefinition[facility, []insuree, pred]{insureesValue()},
	})
	units := manyFacilities(20)

	seq, err := NewBuilder(def, sliceFilter, WithClock(kit.Clock(exportedAt))).Build(context.Background(), "2018-01-01/P5Y", units)
	if err != nil {
		t.Fatalf("sequential Build err = %v", err)
	}
	par, err := NewBuilder(def, sliceFilter, WithClock(kit.Clock(exportedAt)), WithWorkers(8)).Build(context.Background(), "2018-01-01/P5Y", units)
	if err != nil {
		t.Fatalf("parallel Build err = %v", err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Fatalf("parallel cube differs from sequential cube")
	}

	// 15 HC facilities then 5 hospitals
	if len(par.Groups) != 20 {
		t.Fatalf("groups = %d, want 20", len(par.Groups))
	}
	var codes []string
	for _, g := range par.Groups {
		codes = append(codes, g.OrgUnit)
	}
	if codes[0] != "HF00" || codes[14] != "HF18" || codes[15] != "H-HF03" || codes[19] != "H-HF19" {
		t.Fatalf("group order = %v", codes)
	}
	if par.Name != "TEST_HF_ADX_DEFINITION" {
		t.Fatalf("cube name = %q", par.Name)
	}
	if n := len(par.Groups[0].DataValues); n != 3 {
		t.Fatalf("first group values = %d, want 1 + 2", n)
	}
}

func TestBuild_AbortsOnFirstFailure(t *testing.T) {
	boom := errors.New("connection refused")
	dv := insureesValue(sex)
	dv.Dataset = func(_ context.Context, hf facility) ([]insuree, error) {
		if hf.code == "HF05" {
			return nil, boom
		}
		return hf.insurees, nil
	}
	b := NewBuilder(testDefinition(dv), sliceFilter, WithWorkers(4))
	cube, err := b.Build(context.Background(), "2018-01-01/P5Y", manyFacilities(12))
	if cube != nil {
		t.Fatalf("partial cube returned")
	}
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BuildError", err)
	}
	if be.OrgUnit != "HF05" || be.DataSet != "TEST_HF_ADX_DEFINITION" || be.DataElement != "NB_INSUREES" || !errors.Is(err, boom) {
		t.Fatalf("BuildError = %+v", be)
	}
}

func TestBuild_EmptyResultsAndCancellation(t *testing.T) {
	b := NewBuilder(testDefinition(insureesValue(sex)), sliceFilter, WithClock(kit.Clock(exportedAt)))
	cube, err := b.Build(context.Background(), "2030-01-01/P1M", []facility{testFacility()})
	if err != nil {
		t.Fatalf("Build err = %v", err)
	}
	for _, dv := range cube.Groups[0].DataValues {
		if dv.Value != "0" {
			t.Fatalf("zero values must be emitted, got %+v", dv)
		}
	}

	none, err := b.Build(context.Background(), "2019-01-01/P1Y", nil)
	if err != nil || len(none.Groups) != 0 || none.Name != "TEST_HF_ADX_DEFINITION" {
		t.Fatalf("empty org units = %+v, %v", none, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Build(ctx, "2019-01-01/P1Y", []facility{testFacility()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled build err = %v", err)
	}
}

func TestNewBuilder_Guards(t *testing.T) {
	kit.MustPanic(t, func() { _ = NewBuilder[facility, []insuree, pred](testDefinition(), nil) })

	def := testDefinition(insureesValue())
	def.PeriodType = nil
	if _, err := NewBuilder(def, sliceFilter).Build(context.Background(), "2019", nil); err == nil {
		t.Fatalf("missing period type should fail")
	}
}
