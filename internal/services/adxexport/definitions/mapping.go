package definitions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/records/sqlset"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/store"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/validate"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
)

// MappingFile is the YAML document declaring extra cubes
type MappingFile struct {
	Cubes []CubeMapping `yaml:"cubes" validate:"min=1,unique=Name,dive"`
}

// CubeMapping declares one cube
type CubeMapping struct {
	Name       string         `yaml:"name" validate:"required,max=64"`
	PeriodType string         `yaml:"periodType" validate:"omitempty,oneof=iso iso-extended monthly quarterly yearly"`
	Groups     []GroupMapping `yaml:"groups" validate:"min=1,dive"`
}

// GroupMapping declares one group
type GroupMapping struct {
	DataSet string `yaml:"dataSet" validate:"required"`
	Comment string `yaml:"comment"`
	// Levels restricts the group to facility levels; empty means all
	Levels []string `yaml:"levels"`
	// OrgUnitCode picks the org unit id: uid (from the facility UUID) or code
	OrgUnitCode string         `yaml:"orgUnitCode" validate:"omitempty,oneof=uid code"`
	DataValues  []ValueMapping `yaml:"dataValues" validate:"min=1,dive"`
}

// ValueMapping declares one data element as SQL
type ValueMapping struct {
	DataElement   string            `yaml:"dataElement" validate:"required"`
	From          string            `yaml:"from" validate:"required"`
	Where         []string          `yaml:"where"`
	OrgUnitColumn string            `yaml:"orgUnitColumn" validate:"required"`
	PeriodColumn  string            `yaml:"periodColumn" validate:"required"`
	Aggregate     string            `yaml:"aggregate" validate:"omitempty,oneof=count sum"`
	Expr          string            `yaml:"expr"`
	Categories    []CategoryMapping `yaml:"categories" validate:"dive"`
}

// CategoryMapping declares one category
type CategoryMapping struct {
	Name    string          `yaml:"name" validate:"required,xmlname"`
	Options []OptionMapping `yaml:"options" validate:"min=1,dive"`
}

// OptionMapping declares one option as a SQL condition with ? placeholders
type OptionMapping struct {
	Code  string `yaml:"code" validate:"required"`
	Name  string `yaml:"name"`
	Where string `yaml:"where" validate:"required"`
	Args  []any  `yaml:"args"`
}

// LoadFile reads and compiles a mapping file
func LoadFile(path string, q store.RowQuerier) ([]*SQLCube, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "read mapping file %s", path)
	}
	return Load(bytes.NewReader(b), q)
}

// Load decodes a mapping document, validates it and compiles every cube
func Load(r io.Reader, q store.RowQuerier) ([]*SQLCube, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var mf MappingFile
	if err := dec.Decode(&mf); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "decode mapping file")
	}
	if err := validate.Struct(mf); err != nil {
		return nil, err
	}
	out := make([]*SQLCube, 0, len(mf.Cubes))
	for i, cm := range mf.Cubes {
		c, err := compile(cm, q)
		if err == nil {
			err = c.Validate()
		}
		if err != nil {
			return nil, under(err, fmt.Sprintf("cubes[%d]", i))
		}
		out = append(out, c)
	}
	return out, nil
}

// under prefixes the field of err with path
func under(err error, path string) error {
	if e, ok := perr.As(err); ok && e.Field() != "" {
		return perr.WithField(err, path+"."+e.Field())
	}
	return perr.WithField(err, path)
}

var fold = cases.Fold()

func compile(cm CubeMapping, q store.RowQuerier) (*SQLCube, error) {
	pt, _ := period.ByName(cm.PeriodType)
	def := Definition{PeriodType: pt}
	for gi, gm := range cm.Groups {
		g := Group{
			Comment:     gm.Comment,
			DataSet:     gm.DataSet,
			OrgUnitCode: FacilityCode,
			OrgUnitType: HasUUID,
		}
		if gm.OrgUnitCode == "code" {
			g.OrgUnitCode = func(hf domain.HealthFacility) string { return hf.Code }
			g.OrgUnitType = nil
		}
		if len(gm.Levels) > 0 {
			levels := slices.Clone(gm.Levels)
			base := g.OrgUnitType
			g.OrgUnitType = func(hf domain.HealthFacility) bool {
				return slices.Contains(levels, hf.Level) && (base == nil || base(hf))
			}
		}
		for vi, vm := range gm.DataValues {
			v, err := compileValue(vm, q)
			if err != nil {
				return nil, under(err, fmt.Sprintf("groups[%d].dataValues[%d]", gi, vi))
			}
			g.DataValues = append(g.DataValues, v)
		}
		def.Groups = append(def.Groups, g)
	}
	return NewSQLCube(cm.Name, "mapping", def, sqlset.CountOf(q, "*")), nil
}

func compileValue(vm ValueMapping, q store.RowQuerier) (Value, error) {
	base := make([]sqlset.Cond, 0, len(vm.Where))
	for _, w := range vm.Where {
		base = append(base, sqlset.Where(w))
	}
	from, orgCol := vm.From, vm.OrgUnitColumn
	v := Value{
		DataElement: vm.DataElement,
		Dataset: func(_ context.Context, hf domain.HealthFacility) (sqlset.Set, error) {
			return sqlset.New(from, base...).With(sqlset.Where(orgCol+" = ?", hf.ID)), nil
		},
		PeriodFilter: sqlset.Between(vm.PeriodColumn),
	}

	expr := vm.Expr
	switch vm.Aggregate {
	case "sum":
		if expr == "" {
			return Value{}, perr.WithField(perr.Validationf("sum needs an expr"), "expr")
		}
		v.Aggregate = sqlset.Sum(q, expr)
	default:
		if expr == "" {
			expr = "*"
		}
		v.Aggregate = sqlset.Count(q, expr)
	}

	seen := map[string]bool{}
	for _, cm := range vm.Categories {
		key := fold.String(cm.Name)
		if seen[key] {
			return Value{}, perr.WithField(perr.Validationf("category %q is declared twice", cm.Name), "categories")
		}
		seen[key] = true

		c := Category{Name: cm.Name}
		for _, om := range cm.Options {
			code := norm.NFC.String(strings.TrimSpace(om.Code))
			name := om.Name
			if name == "" {
				name = code
			}
			cond := sqlset.Where(om.Where, om.Args...)
			if _, _, err := sqlset.New(vm.From, cond).Render("1"); err != nil {
				return Value{}, perr.WithField(
					perr.Wrapf(err, perr.ErrorCodeValidation, "option %s", code),
					"categories."+cm.Name,
				)
			}
			c.Options = append(c.Options, Option{Code: code, Name: name, Cond: cond})
		}
		v.Categories = append(v.Categories, c)
	}
	return v, nil
}
